package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bersena911/quizapi/internal/app"
	"github.com/bersena911/quizapi/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	writeWait  = 10 * time.Second
)

// WSHandler plays one game over a websocket. Every inbound message maps to
// one game operation and yields one outbound message.
type WSHandler struct {
	service  *app.GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string   `json:"questionId"`
	Choices    []string `json:"choices"`
}

type questionRef struct {
	QuestionID string `json:"questionId"`
}

type gameRef struct {
	GameID string `json:"gameId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS runs behind Authenticate; the game must belong to the caller.
func (h *WSHandler) ServeWS(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	gameID := c.Param("game_id")
	if _, err := h.service.Game(c.Request.Context(), user, gameID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	ctx := c.Request.Context()
	h.serve(conn, gameID, func(inbound inboundMessage) outboundMessage[any] {
		return h.dispatch(ctx, user, gameID, inbound)
	})
}

// serve answers every inbound message with handle until either side fails.
// The writer closes conn when it stops, which unblocks a pending read.
func (h *WSHandler) serve(conn *websocket.Conn, gameID string, handle func(inboundMessage) outboundMessage[any]) {
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer: gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		defer conn.Close()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-send:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					h.logger.Debug("ws write failed", zap.String("game_id", gameID), zap.Error(err))
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		msg := handle(inbound)
		select {
		case send <- msg:
		case <-writerDone:
		}
		if isDone(writerDone) {
			break
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, user domain.User, gameID string, inbound inboundMessage) outboundMessage[any] {
	switch inbound.Type {
	case "next":
		question, err := h.service.Next(ctx, user, gameID)
		if errors.Is(err, domain.ErrGameFinished) {
			return outboundMessage[any]{Type: "finished", Payload: gameRef{GameID: gameID}}
		}
		if err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "question", Payload: question}

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
		}
		if err := h.service.Answer(ctx, user, gameID, payload.QuestionID, payload.Choices); err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "answered", Payload: questionRef{QuestionID: payload.QuestionID}}

	case "skip":
		var payload questionRef
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid skip payload"}}
		}
		if err := h.service.Skip(ctx, user, gameID, payload.QuestionID); err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "skipped", Payload: payload}

	case "finish":
		if err := h.service.Finish(ctx, user, gameID); err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "finished", Payload: gameRef{GameID: gameID}}

	case "results":
		results, err := h.service.Results(ctx, user, gameID)
		if err != nil {
			return h.errorMessage(err)
		}
		return outboundMessage[any]{Type: "results", Payload: results}
	}
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
}

func (h *WSHandler) errorMessage(err error) outboundMessage[any] {
	if statusFor(err) == http.StatusInternalServerError {
		h.logger.Error("ws operation failed", zap.Error(err))
	}
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: publicMessage(err)}}
}

func isDone(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
