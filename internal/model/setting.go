// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 既知の設定名。
const (
	SettingMaintenanceMode     = "maintenanceMode"
	SettingUserRegistration    = "userRegistration"
	SettingListingAutoApproval = "listingAutoApproval"
	SettingMaxFileSize         = "maxFileSize"
)

// Setting は保存されたシステム設定を表す。
// Valueは文字列エンコードされたbooleanまたは数値。
type Setting struct {
	ID          string
	Name        string // 一意キー
	Value       string
	Description string
}

// SettingKind は設定値の型を表す。
type SettingKind string

const (
	// SettingKindBool は "true"/"false" を取る設定。
	SettingKindBool SettingKind = "bool"
	// SettingKindNumber は0以上の数値を取る設定。
	SettingKindNumber SettingKind = "number"
)

// SettingDefinition は既知の設定の型・既定値・説明を定義する。
type SettingDefinition struct {
	Name        string
	Kind        SettingKind
	Default     string
	Description string
}

// settingDefinitions は既知の設定の一覧。並び順はGetAllの並び順になる。
var settingDefinitions = []SettingDefinition{
	{Name: SettingMaintenanceMode, Kind: SettingKindBool, Default: "false", Description: "Enable maintenance mode"},
	{Name: SettingUserRegistration, Kind: SettingKindBool, Default: "true", Description: "Allow new user registrations"},
	{Name: SettingListingAutoApproval, Kind: SettingKindBool, Default: "false", Description: "Auto-approve new listings"},
	{Name: SettingMaxFileSize, Kind: SettingKindNumber, Default: "5", Description: "Maximum file upload size (MB)"},
}

// SettingDefinitions は既知の設定定義のコピーを返す。
func SettingDefinitions() []SettingDefinition {
	defs := make([]SettingDefinition, len(settingDefinitions))
	copy(defs, settingDefinitions)
	return defs
}

// LookupSettingDefinition は設定名から定義を引く。
func LookupSettingDefinition(name string) (SettingDefinition, bool) {
	for _, d := range settingDefinitions {
		if d.Name == name {
			return d, true
		}
	}
	return SettingDefinition{}, false
}

// SettingValue は型付き設定値のタグ付きユニオン。
// 実装は BoolSetting と NumericSetting のみ。
type SettingValue interface {
	SettingName() string
	// Encode は保存用の文字列表現を返す。
	Encode() string
	isSettingValue()
}

// BoolSetting はboolean型の設定値。
type BoolSetting struct {
	Name  string
	Value bool
}

// SettingName は設定名を返す。
func (s BoolSetting) SettingName() string { return s.Name }

// Encode は "true" または "false" を返す。
func (s BoolSetting) Encode() string { return strconv.FormatBool(s.Value) }

func (BoolSetting) isSettingValue() {}

// NumericSetting は数値型の設定値。
type NumericSetting struct {
	Name  string
	Value float64
}

// SettingName は設定名を返す。
func (s NumericSetting) SettingName() string { return s.Name }

// Encode は最短表現の10進文字列を返す（5 → "5"、2.5 → "2.5"）。
func (s NumericSetting) Encode() string { return strconv.FormatFloat(s.Value, 'f', -1, 64) }

func (NumericSetting) isSettingValue() {}

// ParseSettingValue は設定名と生の文字列から型付き設定値を生成する。
// 未知の設定名、型に合わない値、負の数値はエラーを返す。
func ParseSettingValue(name, raw string) (SettingValue, error) {
	def, ok := LookupSettingDefinition(name)
	if !ok {
		return nil, fmt.Errorf("unknown setting %q", name)
	}

	raw = strings.TrimSpace(raw)
	switch def.Kind {
	case SettingKindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("setting %q must be true or false", name)
		}
		return BoolSetting{Name: name, Value: v}, nil
	case SettingKindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("setting %q must be a number", name)
		}
		if v < 0 {
			return nil, fmt.Errorf("setting %q must not be negative", name)
		}
		return NumericSetting{Name: name, Value: v}, nil
	default:
		return nil, fmt.Errorf("setting %q has unsupported kind %q", name, def.Kind)
	}
}
