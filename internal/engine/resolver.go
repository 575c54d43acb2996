package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/finwell-app/finwell/internal/model"
)

// resolveRules merges a user's private rules with the community-shared
// global set. The four reads are independent and issued concurrently. When
// the user's master toggle is off the effective global set is empty;
// otherwise it excludes any rule id the user has opted out of. User rules
// are not deduplicated against global rules; a user rule for the same
// pattern simply sorts earlier.
func (e *ClassificationEngine) resolveRules(ctx context.Context, userID string) ([]model.ClassificationRule, error) {
	var (
		userRules   []model.ClassificationRule
		globalRules []model.ClassificationRule
		settings    model.GlobalRuleSettings
		disabled    map[string]bool

		userErr, globalErr, settingsErr, disabledErr error
	)

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		userRules, userErr = e.store.ListUserRules(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		globalRules, globalErr = e.store.ListGlobalRules(ctx)
	}()
	go func() {
		defer wg.Done()
		settings, settingsErr = e.store.GetGlobalSettings(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		disabled, disabledErr = e.store.ListDisabledGlobalRuleIDs(ctx, userID)
	}()

	wg.Wait()

	for _, err := range []error{userErr, globalErr, settingsErr, disabledErr} {
		if err != nil {
			return nil, fmt.Errorf("failed to load rules for user %s: %w", userID, err)
		}
	}

	merged := make([]model.ClassificationRule, 0, len(userRules)+len(globalRules))
	merged = append(merged, userRules...)

	if settings.UseGlobalRules {
		for _, rule := range globalRules {
			if disabled[rule.ID] {
				continue
			}
			merged = append(merged, rule)
		}
	}

	return merged, nil
}
