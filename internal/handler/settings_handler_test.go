package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/settings"
)

func TestSettingsHandler_GetSettings(t *testing.T) {
	h := NewSettingsHandler(&mockSettingsService{
		getAllFn: func(ctx context.Context) ([]*model.Setting, error) {
			return []*model.Setting{
				{ID: "s1", Name: model.SettingMaintenanceMode, Value: "false", Description: "Enable maintenance mode"},
				{ID: "s2", Name: model.SettingMaxFileSize, Value: "5", Description: "Maximum file upload size (MB)"},
			}, nil
		},
	})

	w := serveRoute(http.MethodGet, "/api/settings", "/api/settings", nil, h.GetSettings)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []settingResponse
	decodeResponse(t, w, &resp)
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}
	if resp[1] != (settingResponse{ID: "s2", Name: "maxFileSize", Value: "5", Description: "Maximum file upload size (MB)"}) {
		t.Errorf("resp[1] = %+v", resp[1])
	}
}

func TestSettingsHandler_SaveSettings_ConvertsJSONValues(t *testing.T) {
	var got []settings.Input
	h := NewSettingsHandler(&mockSettingsService{
		saveAllFn: func(ctx context.Context, inputs []settings.Input) error {
			got = inputs
			return nil
		},
	})

	body := `[
		{"id": "ignored", "name": "maintenanceMode", "value": true, "description": "ignored"},
		{"name": "userRegistration", "value": "false"},
		{"name": "maxFileSize", "value": 12.5}
	]`
	w := serveRoute(http.MethodPut, "/api/settings", "/api/settings", strings.NewReader(body), h.SaveSettings)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	want := []settings.Input{
		{Name: "maintenanceMode", Value: "true"},
		{Name: "userRegistration", Value: "false"},
		{Name: "maxFileSize", Value: "12.5"},
	}
	if len(got) != len(want) {
		t.Fatalf("inputs = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("inputs[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSettingsHandler_SaveSettings_RejectsUnsupportedValue(t *testing.T) {
	h := NewSettingsHandler(&mockSettingsService{
		saveAllFn: func(ctx context.Context, inputs []settings.Input) error {
			t.Error("SaveAll should not be called")
			return nil
		},
	})

	body := `[{"name": "maintenanceMode", "value": true}, {"name": "maxFileSize", "value": {"mb": 5}}]`
	w := serveRoute(http.MethodPut, "/api/settings", "/api/settings", strings.NewReader(body), h.SaveSettings)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSettingsHandler_SaveSettings_ServiceValidationError(t *testing.T) {
	h := NewSettingsHandler(&mockSettingsService{
		saveAllFn: func(ctx context.Context, inputs []settings.Input) error {
			return model.NewValidationError(`setting "maxFileSize" must not be negative`)
		},
	})

	w := serveRoute(http.MethodPut, "/api/settings", "/api/settings",
		strings.NewReader(`[{"name":"maxFileSize","value":-1}]`), h.SaveSettings)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSettingsHandler_SaveSettings_NotAnArray(t *testing.T) {
	h := NewSettingsHandler(&mockSettingsService{})

	w := serveRoute(http.MethodPut, "/api/settings", "/api/settings",
		strings.NewReader(`{"name":"maxFileSize","value":1}`), h.SaveSettings)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRawSettingValue(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{`true`, "true", true},
		{`false`, "false", true},
		{`5`, "5", true},
		{`-0.5`, "-0.5", true},
		{`"10"`, "10", true},
		{`null`, "", false},
		{`[1]`, "", false},
		{``, "", false},
	}

	for _, tt := range tests {
		got, ok := rawSettingValue(json.RawMessage(tt.raw))
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("rawSettingValue(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
