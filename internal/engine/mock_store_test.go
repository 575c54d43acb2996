package engine

import (
	"context"
	"sync"

	"github.com/finwell-app/finwell/internal/model"
	"github.com/finwell-app/finwell/internal/service"
)

// mockStore is an in-memory service.RuleStore with call recording. The
// zero value is usable: no rules, global toggle on, every write succeeds.
type mockStore struct {
	mu sync.Mutex

	userRules   []model.ClassificationRule
	globalRules []model.ClassificationRule
	settings    *model.GlobalRuleSettings
	disabled    map[string]bool

	updateErr error
	upsertErr error

	incrementedIDs []string
	updates        map[string]service.TransactionUpdate
	upserted       []model.ClassificationRule
	invalidations  int
}

func (m *mockStore) ListUserRules(_ context.Context, _ string) ([]model.ClassificationRule, error) {
	return m.userRules, nil
}

func (m *mockStore) ListGlobalRules(_ context.Context) ([]model.ClassificationRule, error) {
	return m.globalRules, nil
}

func (m *mockStore) FindRule(_ context.Context, userID, pattern string, direction model.AmountDirection) (*model.ClassificationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.upserted {
		r := m.upserted[i]
		if r.UserID == userID && r.Pattern == pattern && r.AmountDirection == direction {
			return &r, nil
		}
	}
	for i := range m.userRules {
		r := m.userRules[i]
		if r.UserID == userID && r.Pattern == pattern && r.AmountDirection == direction {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *mockStore) UpsertRule(_ context.Context, rule *model.ClassificationRule) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, *rule)
	return nil
}

func (m *mockStore) IncrementRuleMatchCount(_ context.Context, ruleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incrementedIDs = append(m.incrementedIDs, ruleID)
	return nil
}

func (m *mockStore) GetGlobalSettings(_ context.Context, userID string) (model.GlobalRuleSettings, error) {
	if m.settings != nil {
		return *m.settings, nil
	}
	return model.GlobalRuleSettings{UserID: userID, UseGlobalRules: true}, nil
}

func (m *mockStore) SetGlobalSettings(_ context.Context, settings model.GlobalRuleSettings) error {
	m.settings = &settings
	return nil
}

func (m *mockStore) ListDisabledGlobalRuleIDs(_ context.Context, _ string) (map[string]bool, error) {
	if m.disabled == nil {
		return map[string]bool{}, nil
	}
	return m.disabled, nil
}

func (m *mockStore) SetGlobalRuleDisabled(_ context.Context, _, ruleID string, disabled bool) error {
	if m.disabled == nil {
		m.disabled = make(map[string]bool)
	}
	if disabled {
		m.disabled[ruleID] = true
	} else {
		delete(m.disabled, ruleID)
	}
	return nil
}

func (m *mockStore) SaveTransactions(_ context.Context, _ string, _ []model.Transaction) error {
	return nil
}

func (m *mockStore) ListUnclassifiedTransactions(_ context.Context, _ string) ([]model.Transaction, error) {
	return nil, nil
}

func (m *mockStore) UpdateTransaction(_ context.Context, id string, update service.TransactionUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updates == nil {
		m.updates = make(map[string]service.TransactionUpdate)
	}
	m.updates[id] = update
	return nil
}

func (m *mockStore) InvalidateRules(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++
}

func (m *mockStore) Migrate(_ context.Context) error { return nil }

func (m *mockStore) Close() error { return nil }

func (m *mockStore) upsertedRules() []model.ClassificationRule {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ClassificationRule, len(m.upserted))
	copy(out, m.upserted)
	return out
}
