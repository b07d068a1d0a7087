// Package settings はシステム設定の読み書きを提供する。
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/repository"
)

// Input は保存要求の1件分。Valueは文字列化済みの値。
type Input struct {
	Name  string
	Value string
}

// Service はシステム設定のサービス層。
type Service struct {
	repo repository.SettingRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.SettingRepository) *Service {
	return &Service{repo: repo}
}

// Get は設定名で設定を取得する。未登録の場合はnilを返す。
func (s *Service) Get(ctx context.Context, name string) (*model.Setting, error) {
	setting, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}
	return setting, nil
}

// GetAll は保存済みの設定を既知の設定順で返す。
// 未知の設定名はその後ろに名前順で並ぶ。
func (s *Service) GetAll(ctx context.Context) ([]*model.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("設定一覧の取得に失敗しました: %w", err)
	}

	rank := make(map[string]int)
	for i, d := range model.SettingDefinitions() {
		rank[d.Name] = i
	}
	sort.SliceStable(settings, func(i, j int) bool {
		ri, okI := rank[settings[i].Name]
		rj, okJ := rank[settings[j].Name]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		default:
			return settings[i].Name < settings[j].Name
		}
	})
	return settings, nil
}

// SaveAll は設定を名前キーで一括保存する。
// 1件でも未知の名前や型に合わない値があれば、何も書き込まずにValidationErrorを返す。
func (s *Service) SaveAll(ctx context.Context, inputs []Input) error {
	if len(inputs) == 0 {
		return nil
	}

	records := make([]*model.Setting, 0, len(inputs))
	for _, in := range inputs {
		value, err := model.ParseSettingValue(in.Name, in.Value)
		if err != nil {
			return model.NewValidationError(err.Error())
		}
		def, _ := model.LookupSettingDefinition(in.Name)
		records = append(records, &model.Setting{
			Name:        value.SettingName(),
			Value:       value.Encode(),
			Description: def.Description,
		})
	}

	if err := s.repo.UpsertAll(ctx, records); err != nil {
		return fmt.Errorf("設定の保存に失敗しました: %w", err)
	}

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	slog.Info("システム設定を更新しました", slog.Any("names", names))
	return nil
}

// EnsureDefaults は未登録の既知設定を既定値で作成し、作成件数を返す。
// 既存の値には触れない。
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	var missing []*model.Setting
	for _, d := range model.SettingDefinitions() {
		existing, err := s.Get(ctx, d.Name)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			continue
		}
		missing = append(missing, &model.Setting{
			Name:        d.Name,
			Value:       d.Default,
			Description: d.Description,
		})
	}
	if len(missing) == 0 {
		return 0, nil
	}

	if err := s.repo.UpsertAll(ctx, missing); err != nil {
		return 0, fmt.Errorf("既定設定の作成に失敗しました: %w", err)
	}
	slog.Info("既定のシステム設定を作成しました", slog.Int("count", len(missing)))
	return len(missing), nil
}

// Bool はboolean設定を読む。未登録または解釈できない場合は既定値を返す。
func (s *Service) Bool(ctx context.Context, name string) (bool, error) {
	value, err := s.typed(ctx, name)
	if err != nil {
		return false, err
	}
	b, ok := value.(model.BoolSetting)
	if !ok {
		return false, fmt.Errorf("setting %q is not a boolean", name)
	}
	return b.Value, nil
}

// Number は数値設定を読む。未登録または解釈できない場合は既定値を返す。
func (s *Service) Number(ctx context.Context, name string) (float64, error) {
	value, err := s.typed(ctx, name)
	if err != nil {
		return 0, err
	}
	n, ok := value.(model.NumericSetting)
	if !ok {
		return 0, fmt.Errorf("setting %q is not a number", name)
	}
	return n.Value, nil
}

func (s *Service) typed(ctx context.Context, name string) (model.SettingValue, error) {
	def, ok := model.LookupSettingDefinition(name)
	if !ok {
		return nil, fmt.Errorf("unknown setting %q", name)
	}

	setting, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	raw := def.Default
	if setting != nil {
		raw = setting.Value
	}
	value, err := model.ParseSettingValue(name, raw)
	if err != nil {
		slog.Warn("保存された設定値を解釈できないため既定値を使用します",
			slog.String("name", name),
			slog.String("value", raw),
		)
		return model.ParseSettingValue(name, def.Default)
	}
	return value, nil
}
