package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/gusgushz/baches/internal/model"
	"github.com/gusgushz/baches/internal/normalize"
)

// ErrWorkerRole is returned when the backend authenticates a user whose
// role is worker: field crews use the mobile app, not this console.
var ErrWorkerRole = errors.New("Acceso denegado: Los trabajadores no tienen permitido entrar en esta aplicación.")

// ErrOffline replaces raw transport errors on the login path, where the
// user has no session yet and a dial failure reads like a credential problem.
var ErrOffline = errors.New("No hay conexión a internet")

// Login authenticates against POST /auth/login. The success envelope is
// {message, data, token}; failures arrive as {message, error}. The token may
// also come nested inside data depending on the backend build.
func (c *Client) Login(ctx context.Context, email, password string) (model.UserProfile, string, error) {
	body, err := c.do(ctx, "POST", c.endpoint("/auth/login"), map[string]string{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		var netErr *url.Error
		if errors.As(err, &netErr) {
			return model.UserProfile{}, "", ErrOffline
		}
		return model.UserProfile{}, "", err
	}

	var envelope struct {
		Message string         `json:"message"`
		Error   string         `json:"error"`
		Data    map[string]any `json:"data"`
		Token   string         `json:"token"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return model.UserProfile{}, "", errors.New("Respuesta inválida del servidor")
	}

	token := strings.TrimSpace(envelope.Token)
	if token == "" && envelope.Data != nil {
		if nested, ok := envelope.Data["token"].(string); ok {
			token = strings.TrimSpace(nested)
		}
	}
	if token == "" || envelope.Data == nil {
		msg := strings.TrimSpace(envelope.Error)
		if msg == "" {
			msg = strings.TrimSpace(envelope.Message)
		}
		if msg == "" {
			msg = "Error en la autenticación"
		}
		return model.UserProfile{}, "", errors.New(msg)
	}

	user := normalize.Worker(envelope.Data)
	if user.Role == model.RoleWorker {
		return model.UserProfile{}, "", ErrWorkerRole
	}
	c.log.Info("login ok for %s (%s)", user.Email, user.Role)
	return user, token, nil
}
