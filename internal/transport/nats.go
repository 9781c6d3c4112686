package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/avvvet/travelbuddy-intent/internal/config"
	"github.com/avvvet/travelbuddy-intent/internal/logger"
	"github.com/avvvet/travelbuddy-intent/internal/models"
)

// ChatService is what the transport needs from the chat pipeline.
type ChatService interface {
	ProcessMessage(ctx context.Context, request *models.ChatRequest) (*models.ChatResponse, error)
	ClearSession(ctx context.Context, request *models.ClearRequest) *models.ClearResponse
}

type NATSTransport struct {
	conn    *nats.Conn
	subs    []*nats.Subscription
	config  *config.Config
	service ChatService
	logger  logger.Logger
}

func NewNATSTransport(cfg *config.Config, service ChatService, log logger.Logger) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("transport", "disconnected from NATS", map[string]interface{}{"error": err.Error()})
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("transport", "reconnected to NATS", map[string]interface{}{"url": c.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("transport", "connected to NATS", map[string]interface{}{"url": cfg.NatsURL})

	return &NATSTransport{
		conn:    conn,
		config:  cfg,
		service: service,
		logger:  log,
	}, nil
}

func (nt *NATSTransport) Start() error {
	routes := map[string]func([]byte) []byte{
		nt.config.NatsChatSubject:  nt.handleChat,
		nt.config.NatsClearSubject: nt.handleClear,
	}

	for subject, handle := range routes {
		handle := handle
		sub, err := nt.conn.Subscribe(subject, func(msg *nats.Msg) {
			nt.respond(msg, handle(msg.Data))
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		nt.subs = append(nt.subs, sub)
		nt.logger.Info("transport", "subscribed", map[string]interface{}{"subject": subject})
	}
	return nil
}

// handleChat decodes a chat request and encodes the reply. It always
// returns a response body, including for malformed input.
func (nt *NATSTransport) handleChat(data []byte) []byte {
	var request models.ChatRequest
	if err := json.Unmarshal(data, &request); err != nil {
		nt.logger.Warn("transport", "invalid chat request", map[string]interface{}{"error": err.Error()})
		return nt.encode(chatError(&request, models.ErrorParseError, "Invalid request format"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout)
	defer cancel()

	response, err := nt.service.ProcessMessage(ctx, &request)
	if err != nil {
		nt.logger.Error("transport", "chat processing failed", map[string]interface{}{
			"user_id": request.UserID,
			"error":   err.Error(),
		})
		return nt.encode(chatError(&request, models.ErrorLLMFailed, err.Error()))
	}
	return nt.encode(response)
}

func (nt *NATSTransport) handleClear(data []byte) []byte {
	var request models.ClearRequest
	if err := json.Unmarshal(data, &request); err != nil {
		code, message := models.ErrorParseError, "Invalid request format"
		return nt.encode(&models.ClearResponse{Status: models.StatusError, ErrorCode: &code, ErrorMessage: &message})
	}

	ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout)
	defer cancel()

	response := nt.service.ClearSession(ctx, &request)
	nt.logger.Info("transport", "session cleared", map[string]interface{}{
		"user_id": request.UserID,
		"status":  response.Status,
	})
	return nt.encode(response)
}

func (nt *NATSTransport) encode(response interface{}) []byte {
	data, err := json.Marshal(response)
	if err != nil {
		nt.logger.Error("transport", "failed to marshal response", map[string]interface{}{"error": err.Error()})
		return []byte(`{"status":"ERROR"}`)
	}
	return data
}

func (nt *NATSTransport) respond(msg *nats.Msg, data []byte) {
	if err := msg.Respond(data); err != nil {
		nt.logger.Error("transport", "failed to send response", map[string]interface{}{
			"subject": msg.Subject,
			"error":   err.Error(),
		})
	}
}

func chatError(request *models.ChatRequest, errorCode, errorMessage string) *models.ChatResponse {
	return &models.ChatResponse{
		UserID:       request.UserID,
		Status:       models.StatusError,
		Message:      "I'm sorry, I encountered an error processing your request. Please try again.",
		ErrorCode:    &errorCode,
		ErrorMessage: &errorMessage,
	}
}

func (nt *NATSTransport) Close() error {
	for _, sub := range nt.subs {
		if err := sub.Unsubscribe(); err != nil {
			nt.logger.Warn("transport", "failed to unsubscribe", map[string]interface{}{
				"subject": sub.Subject,
				"error":   err.Error(),
			})
		}
	}
	nt.subs = nil

	if nt.conn != nil && !nt.conn.IsClosed() {
		if err := nt.conn.Drain(); err != nil {
			nt.conn.Close()
		}
		nt.logger.Info("transport", "NATS connection closed", nil)
	}
	return nil
}
