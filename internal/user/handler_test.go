package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler http.HandlerFunc, userID, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), "userID", userID))
	}
	w := httptest.NewRecorder()
	handler(w, req)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return w.Code, response
}

func TestHandleRegister(t *testing.T) {
	svc, _, _ := newTestService(t)
	handler := NewHandler(svc, logrusDiscard())

	status, response := serve(t, handler.HandleRegister, "", `{"email":"gina@example.com","username":"gina_g","password":"password123"}`)
	assert.Equal(t, http.StatusCreated, status)
	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["user_id"])
	assert.Equal(t, "gina_g", data["username"])

	status, response = serve(t, handler.HandleRegister, "", `{"email":"gina@example.com","username":"gina_two","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "email already exists", response["message"])

	status, response = serve(t, handler.HandleRegister, "", `{"email":"new@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrPasswordTooShort.Error(), response["message"])

	status, response = serve(t, handler.HandleRegister, "", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and password are required", response["message"])

	status, _ = serve(t, handler.HandleRegister, "", `nope`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	handler := NewHandler(svc, logrusDiscard())
	user, err := svc.Register(context.Background(), "hank_h", "hank@example.com", "password123")
	require.NoError(t, err)

	status, response := serve(t, handler.HandleGetUserProfile, user.ID, "")
	assert.Equal(t, http.StatusOK, status)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "hank@example.com", data["email"])
	assert.Equal(t, "hank_h", data["username"])
	assert.Equal(t, false, data["2fa_enabled"])

	status, response = serve(t, handler.HandleUpdateProfile, user.ID, `{"username":"hank_hill"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hank_hill", response["data"].(map[string]interface{})["username"])

	status, response = serve(t, handler.HandleUpdateProfile, user.ID, `{"new_password":"newpassword1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrPasswordChangeIncomplete.Error(), response["message"])

	status, _ = serve(t, handler.HandleGetUserProfile, "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, response = serve(t, handler.HandleGetUserProfile, "00000000-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", response["message"])
}

func TestHandleChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	handler := NewHandler(svc, logrusDiscard())
	user, err := svc.Register(context.Background(), "ivan_i", "ivan@example.com", "password123")
	require.NoError(t, err)

	status, response := serve(t, handler.HandleChangePassword, user.ID, `{"old_password":"bad-password","new_password":"newpassword1"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid old password", response["message"])

	status, response = serve(t, handler.HandleChangePassword, user.ID, `{"old_password":"password123","new_password":"newpassword1"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Password changed successfully", response["message"])
}
