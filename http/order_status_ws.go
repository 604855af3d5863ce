package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/orders"
)

const (
	defaultStatusPollInterval = 2 * time.Second
	statusWriteTimeout        = 10 * time.Second
)

// order ids are unguessable, so any origin may watch one
var statusUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// orderStatusStreamHandler pushes an order status message on connect and on
// every change, then closes once the order reaches a terminal status.
func (httpSvc *HttpService) orderStatusStreamHandler(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("order_id")

	current, err := httpSvc.api.GetOrderStatus(ctx, orderID)
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}

	conn, err := statusUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeOrderStatus(conn, current); err != nil {
		return nil
	}

	ticker := time.NewTicker(httpSvc.statusPollInterval)
	defer ticker.Stop()

	for !current.Status.Terminal() {
		select {
		case <-closed:
			return nil
		case <-ticker.C:
			next, err := httpSvc.api.GetOrderStatus(ctx, orderID)
			if err != nil {
				logger.Logger.Error().Err(err).Str("order_id", orderID).Msg("Failed to poll order status")
				closeStatusStream(conn, websocket.CloseInternalServerErr, "")
				return nil
			}
			if next.Status == current.Status {
				continue
			}
			current = next
			if err := writeOrderStatus(conn, current); err != nil {
				return nil
			}
		}
	}

	closeStatusStream(conn, websocket.CloseNormalClosure, string(current.Status))
	return nil
}

func writeOrderStatus(conn *websocket.Conn, status *orders.OrderStatusResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(statusWriteTimeout))
	return conn.WriteJSON(status)
}

func closeStatusStream(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(statusWriteTimeout))
}
