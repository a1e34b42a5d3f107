package realtime

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, restrict to configured origins.
		return true
	},
}

// Handler upgrades authenticated websocket connections and wires them
// into the session registry.
type Handler struct {
	Registry  *Registry
	JWTSecret string
}

func NewHandler(reg *Registry, jwtSecret string) *Handler {
	return &Handler{Registry: reg, JWTSecret: jwtSecret}
}

// Serve handles GET /ws?token=<access token>. Browsers cannot set an
// Authorization header on a websocket upgrade, so the token travels as a
// query parameter instead.
func (h *Handler) Serve(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(h.JWTSecret), nil
	})
	if err != nil || !tok.Valid {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
	}
	identityID, _ := claims["sub"].(string)
	if identityID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // Upgrade already wrote the error response
	}
	client := newClient(h.Registry, identityID, conn)
	go client.writePump()
	go client.readPump()
	return nil
}
