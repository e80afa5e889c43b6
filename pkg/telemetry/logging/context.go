package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// AttackIDKey is the context key for attack identifiers.
	AttackIDKey contextKey = "attack_id"

	// TechniqueKey is the context key for attack technique labels.
	TechniqueKey contextKey = "technique"

	// TargetModelKey is the context key for target model names.
	TargetModelKey contextKey = "target_model"

	// SessionKey is the context key for session identifiers.
	SessionKey contextKey = "session"
)

// WithAttackID adds an attack ID to the context.
func WithAttackID(ctx context.Context, attackID string) context.Context {
	return context.WithValue(ctx, AttackIDKey, attackID)
}

// GetAttackID retrieves the attack ID from the context.
func GetAttackID(ctx context.Context) string {
	if attackID, ok := ctx.Value(AttackIDKey).(string); ok {
		return attackID
	}
	return ""
}

// WithTechnique adds a technique label to the context.
func WithTechnique(ctx context.Context, technique string) context.Context {
	return context.WithValue(ctx, TechniqueKey, technique)
}

// WithTargetModel adds a target model name to the context.
func WithTargetModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, TargetModelKey, model)
}

// WithSession adds a session identifier to the context.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// extractContextFields collects known context values as slog args.
func extractContextFields(ctx context.Context) []any {
	var args []any

	for _, key := range []contextKey{AttackIDKey, TechniqueKey, TargetModelKey, SessionKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			args = append(args, string(key), v)
		}
	}
	return args
}
