package rag

import "strings"

type cannedAnswer struct {
	topic    string
	keywords []string
	answer   Localized
}

var generalAnswers = []cannedAnswer{
	{
		topic:    "visa",
		keywords: []string{"visa", "passport", "فيزا", "تأشيرة", "تاشيرة", "جواز"},
		answer: Localized{
			EN: "Egyptian destinations need no visa for Egyptian citizens. Istanbul and Beirut require a visa for most nationalities; we can help with the paperwork. Bali offers visa on arrival.",
			AR: "الوجهات داخل مصر لا تحتاج فيزا للمصريين. اسطنبول وبيروت تحتاج فيزا لمعظم الجنسيات ونقدر نساعدك في الأوراق. بالي متاح فيها الفيزا عند الوصول.",
		},
	},
	{
		topic:    "weather",
		keywords: []string{"weather", "temperature", "climate", "الطقس", "الجو", "درجة الحرارة"},
		answer: Localized{
			EN: "The Red Sea resorts are sunny all year, around 22°C in winter and 35°C in summer. Istanbul and Beirut are cooler in winter, and Bali is tropical with a rainy season from November to March.",
			AR: "منتجعات البحر الأحمر مشمسة طول السنة، حوالي 22 درجة في الشتاء و35 في الصيف. اسطنبول وبيروت أبرد في الشتاء، وبالي استوائية وموسم الأمطار من نوفمبر لمارس.",
		},
	},
	{
		topic:    "payment",
		keywords: []string{"payment", "pay", "installment", "credit card", "الدفع", "ادفع", "تقسيط", "كاش"},
		answer: Localized{
			EN: "You can pay by cash, bank transfer or credit card. A deposit confirms the booking and installment plans are available with partner banks.",
			AR: "تقدر تدفع كاش أو تحويل بنكي أو بالكارت. العربون بيأكد الحجز ومتاح تقسيط مع البنوك المتعاقدة.",
		},
	},
	{
		topic:    "kids",
		keywords: []string{"kids", "children", "child", "baby", "أطفال", "اطفال", "طفل", "ولاد"},
		answer: Localized{
			EN: "Children under 6 usually stay free when sharing their parents' room, and children from 6 to 12 get a discount. Exact policies vary by hotel.",
			AR: "الأطفال أقل من 6 سنين غالباً مجاناً في نفس غرفة الوالدين، ومن 6 لـ 12 سنة ليهم خصم. السياسة بتختلف حسب الفندق.",
		},
	},
	{
		topic:    "cancellation",
		keywords: []string{"cancel", "refund", "إلغاء", "الغاء", "استرداد", "استرجاع"},
		answer: Localized{
			EN: "Free cancellation is available up to 14 days before travel. Later cancellations may incur fees depending on the hotel policy.",
			AR: "الإلغاء مجاني حتى 14 يوم قبل السفر. الإلغاء بعد كده ممكن يكون عليه رسوم حسب سياسة الفندق.",
		},
	},
}

// AnswerGeneralQuestion returns a canned answer when the question mentions a
// known topic. Topics are checked in a fixed order.
func (s *Service) AnswerGeneralQuestion(question, lang string) (string, bool) {
	q := strings.ToLower(question)
	for _, a := range generalAnswers {
		for _, k := range a.keywords {
			if strings.Contains(q, k) {
				return a.answer.Or(lang), true
			}
		}
	}
	return "", false
}
