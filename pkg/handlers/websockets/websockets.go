// Package websockets registers and removes the buyer connections that the
// allocation push is delivered over. In AWS the API Gateway WebSocket stage
// invokes the lambda handlers on $connect and $disconnect; locally ServeHTTP
// upgrades the request itself and keeps the connection registered for as long
// as the socket stays open.
package websockets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rvallim/raffle-allocation/pkg/notify"
)

// Handler manages WebSocket lifecycle events.
type Handler struct {
	connManager notify.ConnectionManager
}

// NewHandler creates a new websockets Handler.
func NewHandler(connManager notify.ConnectionManager) *Handler {
	return &Handler{connManager: connManager}
}

// HandleConnect registers a new buyer connection so it receives allocation
// pushes.
func (h *Handler) HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	slog.Info("websocket connect", "connectionId", connectionID)

	if err := h.connManager.AddConnection(ctx, connectionID); err != nil {
		slog.Error("failed to register connection", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDisconnect removes a buyer connection.
func (h *Handler) HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	slog.Info("websocket disconnect", "connectionId", connectionID)

	if err := h.connManager.RemoveConnection(ctx, connectionID); err != nil {
		slog.Error("failed to remove connection", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDefault acknowledges any other route. Buyers never send application
// messages; the channel is push only.
func (h *Handler) HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	slog.Info("websocket message ignored", "connectionId", request.RequestContext.ConnectionID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

var upgrader = websocket.Upgrader{
	// Allow all connections by default for local development.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeHTTP handles WebSocket upgrade requests when running outside API
// Gateway. The connection is registered under a generated ID and removed when
// the socket closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.New().String()
	if err := h.connManager.AddConnection(r.Context(), connectionID); err != nil {
		slog.Error("failed to register connection", "connectionId", connectionID, "error", err)
		return
	}
	defer func() {
		if err := h.connManager.RemoveConnection(r.Context(), connectionID); err != nil {
			slog.Error("failed to remove connection", "connectionId", connectionID, "error", err)
		}
	}()

	slog.Info("websocket connect", "connectionId", connectionID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "connectionId", connectionID, "error", err)
			}
			break
		}
	}

	slog.Info("websocket disconnect", "connectionId", connectionID)
}
