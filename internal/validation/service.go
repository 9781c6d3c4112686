package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// Result is returned by every validator. Errors make Valid false; warnings
// never do.
type Result struct {
	Valid          bool        `json:"valid" yaml:"valid"`
	Errors         []string    `json:"errors" yaml:"errors"`
	Warnings       []string    `json:"warnings" yaml:"warnings"`
	CorrectedValue interface{} `json:"corrected_value,omitempty" yaml:"corrected_value,omitempty"`
}

func newResult() *Result {
	return &Result{Valid: true, Errors: []string{}, Warnings: []string{}}
}

func (r *Result) fail(msg string) Result {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
	return *r
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Service holds no per-request state and is safe to share.
type Service struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a validator. A nil clock means time.Now.
func NewService(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		validate: validator.New(),
		now:      now,
	}
}

func msg(lang, en, ar string) string {
	if lang == "ar" {
		return ar
	}
	return en
}

var inputLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

var dayMonthPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})$`)

var monthNames = []struct {
	month time.Month
	names []string
}{
	{time.January, []string{"january", "يناير"}},
	{time.February, []string{"february", "فبراير"}},
	{time.March, []string{"march", "مارس"}},
	{time.April, []string{"april", "أبريل", "ابريل"}},
	{time.May, []string{"may", "مايو"}},
	{time.June, []string{"june", "يونيو"}},
	{time.July, []string{"july", "يوليو"}},
	{time.August, []string{"august", "أغسطس", "اغسطس"}},
	{time.September, []string{"september", "سبتمبر"}},
	{time.October, []string{"october", "أكتوبر", "اكتوبر"}},
	{time.November, []string{"november", "نوفمبر"}},
	{time.December, []string{"december", "ديسمبر"}},
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate tries full layouts, then DD/MM in the current year (next year if
// already past), then a month name (next year if the month is already behind).
func (s *Service) parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	today := s.today()

	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	if m := dayMonthPattern.FindStringSubmatch(value); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || day < 1 {
			return time.Time{}, false
		}
		t := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day {
			return time.Time{}, false
		}
		if t.Before(today) {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}

	lower := strings.ToLower(value)
	for _, mn := range monthNames {
		for _, name := range mn.names {
			if strings.Contains(lower, name) {
				year := today.Year()
				if mn.month < today.Month() {
					year++
				}
				return time.Date(year, mn.month, 1, 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	return time.Time{}, false
}

// ValidateDate accepts today or any later date. The corrected value is the
// date in YYYY-MM-DD form.
func (s *Service) ValidateDate(value, lang string) Result {
	r := newResult()
	if strings.TrimSpace(value) == "" {
		return r.fail(msg(lang, "Date is required", "التاريخ مطلوب"))
	}

	t, ok := s.parseDate(value)
	if !ok {
		return r.fail(msg(lang, "Invalid date format, please use DD/MM or YYYY-MM-DD", "صيغة التاريخ غير صحيحة، استخدم يوم/شهر أو سنة-شهر-يوم"))
	}

	today := s.today()
	if t.Before(today) {
		return r.fail(msg(lang, "Date cannot be in the past", "لا يمكن أن يكون التاريخ في الماضي"))
	}
	if t.After(today.AddDate(1, 0, 0)) {
		r.warn(msg(lang, "Date is more than a year away", "التاريخ بعد أكثر من سنة"))
	}

	r.CorrectedValue = t.Format(dateLayout)
	return *r
}

// DateRange is the corrected value of ValidateDateRange.
type DateRange struct {
	Start  string `json:"start" yaml:"start"`
	End    string `json:"end" yaml:"end"`
	Nights int    `json:"nights" yaml:"nights"`
}

func (s *Service) ValidateDateRange(start, end, lang string) Result {
	r := newResult()

	startRes := s.ValidateDate(start, lang)
	if !startRes.Valid {
		return r.fail(msg(lang, "Start date: ", "تاريخ البداية: ") + startRes.Errors[0])
	}
	endRes := s.ValidateDate(end, lang)
	if !endRes.Valid {
		return r.fail(msg(lang, "End date: ", "تاريخ النهاية: ") + endRes.Errors[0])
	}

	startDate, _ := time.Parse(dateLayout, startRes.CorrectedValue.(string))
	endDate, _ := time.Parse(dateLayout, endRes.CorrectedValue.(string))
	if !endDate.After(startDate) {
		return r.fail(msg(lang, "End date must be after start date", "تاريخ النهاية لازم يكون بعد تاريخ البداية"))
	}

	nights := int(endDate.Sub(startDate).Hours() / 24)
	if nights > 30 {
		r.warn(msg(lang, "Stays longer than 30 nights may need a custom quote", "الإقامة أكثر من 30 ليلة قد تحتاج عرض خاص"))
	}

	r.CorrectedValue = DateRange{Start: startDate.Format(dateLayout), End: endDate.Format(dateLayout), Nights: nights}
	return *r
}

var priceNoise = strings.NewReplacer(",", "", " ", "", "egp", "", "usd", "", "$", "", "جنيه", "", "ج.م", "")

// ValidatePrice parses a user-entered amount. The corrected value is a float64.
func (s *Service) ValidatePrice(value, lang string) Result {
	r := newResult()

	cleaned := priceNoise.Replace(strings.ToLower(strings.TrimSpace(value)))
	if cleaned == "" {
		return r.fail(msg(lang, "Price is required", "السعر مطلوب"))
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return r.fail(msg(lang, "Price must be a number", "السعر لازم يكون رقم"))
	}
	if price <= 0 {
		return r.fail(msg(lang, "Price must be greater than zero", "السعر لازم يكون أكبر من صفر"))
	}
	if price > 1000000 {
		r.warn(msg(lang, "This price is unusually high", "السعر ده عالي بشكل غير معتاد"))
	}

	r.CorrectedValue = price
	return *r
}

func (s *Service) ValidatePriceRange(minPrice, maxPrice float64, lang string) Result {
	r := newResult()
	if minPrice < 0 || maxPrice < 0 {
		return r.fail(msg(lang, "Prices cannot be negative", "الأسعار لا يمكن أن تكون سالبة"))
	}
	if maxPrice <= minPrice {
		return r.fail(msg(lang, "Maximum price must be greater than minimum price", "الحد الأقصى لازم يكون أكبر من الحد الأدنى"))
	}
	if minPrice > 0 && maxPrice > minPrice*10 {
		r.warn(msg(lang, "The price range is very wide", "نطاق السعر واسع جداً"))
	}
	return *r
}

func (s *Service) ValidateTravelers(count int, lang string) Result {
	r := newResult()
	if count < 1 {
		return r.fail(msg(lang, "At least one traveler is required", "لازم يكون في مسافر واحد على الأقل"))
	}
	if count > 10 {
		r.warn(msg(lang, "Groups larger than 10 get a special group quote", "المجموعات أكبر من 10 ليها عرض خاص"))
	}
	r.CorrectedValue = count
	return *r
}

func (s *Service) ValidateStars(stars int, lang string) Result {
	r := newResult()
	if stars < 1 || stars > 5 {
		return r.fail(msg(lang, "Star rating must be between 1 and 5", "تصنيف النجوم لازم يكون من 1 لـ 5"))
	}
	r.CorrectedValue = stars
	return *r
}

var domainTypos = map[string]string{
	"gmial.com":   "gmail.com",
	"gmai.com":    "gmail.com",
	"gamil.com":   "gmail.com",
	"gmail.co":    "gmail.com",
	"gmail.con":   "gmail.com",
	"yaho.com":    "yahoo.com",
	"yahooo.com":  "yahoo.com",
	"yahoo.con":   "yahoo.com",
	"hotmial.com": "hotmail.com",
	"hotmai.com":  "hotmail.com",
	"hotmail.con": "hotmail.com",
	"outlok.com":  "outlook.com",
	"outlook.con": "outlook.com",
}

// ValidateEmail checks syntax and warns about common domain typos.
func (s *Service) ValidateEmail(email, lang string) Result {
	r := newResult()

	cleaned := strings.ToLower(strings.TrimSpace(email))
	if cleaned == "" {
		return r.fail(msg(lang, "Email is required", "البريد الإلكتروني مطلوب"))
	}
	if err := s.validate.Var(cleaned, "email"); err != nil {
		return r.fail(msg(lang, "Invalid email address", "البريد الإلكتروني غير صحيح"))
	}

	if at := strings.LastIndex(cleaned, "@"); at >= 0 {
		if fixed, ok := domainTypos[cleaned[at+1:]]; ok {
			suggestion := cleaned[:at+1] + fixed
			r.warn(fmt.Sprintf(msg(lang, "Did you mean %s?", "هل تقصد %s؟"), suggestion))
		}
	}

	r.CorrectedValue = cleaned
	return *r
}

var (
	phoneNoise   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	phonePattern = regexp.MustCompile(`^\+?\d+$`)
)

// ValidatePhone accepts 10 to 15 digits with an optional leading +. The
// corrected value has spaces, dashes and parentheses removed.
func (s *Service) ValidatePhone(phone, lang string) Result {
	r := newResult()

	cleaned := phoneNoise.Replace(strings.TrimSpace(phone))
	if cleaned == "" {
		return r.fail(msg(lang, "Phone number is required", "رقم الهاتف مطلوب"))
	}
	if !phonePattern.MatchString(cleaned) {
		return r.fail(msg(lang, "Phone number can only contain digits", "رقم الهاتف لازم يكون أرقام فقط"))
	}

	digits := strings.TrimPrefix(cleaned, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return r.fail(msg(lang, "Phone number must be 10 to 15 digits", "رقم الهاتف لازم يكون من 10 لـ 15 رقم"))
	}

	if strings.HasPrefix(cleaned, "01") && len(cleaned) == 11 && !strings.HasPrefix(cleaned, "+20") {
		r.warn(msg(lang, "Consider adding the country code (+20)", "يفضل إضافة كود الدولة (+20)"))
	}

	r.CorrectedValue = cleaned
	return *r
}

func (s *Service) ValidateName(name, lang string) Result {
	r := newResult()

	cleaned := strings.Join(strings.Fields(name), " ")
	if cleaned == "" {
		return r.fail(msg(lang, "Name is required", "الاسم مطلوب"))
	}

	n := utf8.RuneCountInString(cleaned)
	if n < 2 {
		return r.fail(msg(lang, "Name is too short", "الاسم قصير جداً"))
	}
	if n > 50 {
		return r.fail(msg(lang, "Name is too long", "الاسم طويل جداً"))
	}
	for _, c := range cleaned {
		if unicode.IsDigit(c) {
			return r.fail(msg(lang, "Name cannot contain numbers", "الاسم لا يمكن أن يحتوي على أرقام"))
		}
	}

	if !strings.Contains(cleaned, " ") {
		r.warn(msg(lang, "Please provide your full name", "من فضلك اكتب اسمك بالكامل"))
	}

	r.CorrectedValue = cleaned
	return *r
}
