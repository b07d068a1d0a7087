package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/settings"
)

// SettingsServiceInterface は設定ハンドラーが必要とするサービスインターフェース。
type SettingsServiceInterface interface {
	GetAll(ctx context.Context) ([]*model.Setting, error)
	SaveAll(ctx context.Context, inputs []settings.Input) error
}

// SettingsHandler はシステム設定のHTTPハンドラー。
type SettingsHandler struct {
	service SettingsServiceInterface
}

// NewSettingsHandler はSettingsHandlerを生成する。
func NewSettingsHandler(service SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{service: service}
}

type settingResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// settingUpdate はPUTの要素。valueはboolean・数値・文字列のいずれも受け付ける。
// id、descriptionなどその他のフィールドは無視する。
type settingUpdate struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// GetSettings は保存済みの全設定を返す。
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetAll(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]settingResponse, len(all))
	for i, s := range all {
		resp[i] = settingResponse{
			ID:          s.ID,
			Name:        s.Name,
			Value:       s.Value,
			Description: s.Description,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SaveSettings は設定を一括保存する。1件でも不正なら何も保存しない。
// PUT /api/settings
func (h *SettingsHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req []settingUpdate
	if !decodeJSON(w, r, &req, 0) {
		return
	}

	inputs := make([]settings.Input, 0, len(req))
	for _, u := range req {
		value, ok := rawSettingValue(u.Value)
		if !ok {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewValidationError("Setting "+u.Name+" has an unsupported value."))
			return
		}
		inputs = append(inputs, settings.Input{Name: u.Name, Value: value})
	}

	if err := h.service.SaveAll(r.Context(), inputs); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Settings updated successfully"})
}

// rawSettingValue はJSONの値を保存用の文字列に変換する。
// 文字列はそのまま、boolean・数値はJSON表現を使う。null・配列・オブジェクトは受け付けない。
func rawSettingValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case 't', 'f', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw), true
	default:
		return "", false
	}
}
