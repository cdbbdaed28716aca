// Package access decides who may be seen by restricted-area cameras.
package access

import (
	"context"
	"fmt"

	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/service/alert"
)

// IntruderReporter receives every denied detection.
type IntruderReporter interface {
	Report(ctx context.Context, det model.ResolvedDetection) (bool, error)
}

// Decision is the outcome of one evaluation.
type Decision struct {
	Authorized bool
	// Captured is true when the reporter stored a new intruder record.
	Captured bool
}

// Engine applies one access policy for the duration of a run.
type Engine struct {
	policy   model.AccessPolicy
	alerter  alert.Alerter
	reporter IntruderReporter
	logger   *logger.Logger
}

func NewEngine(policy model.AccessPolicy, alerter alert.Alerter, reporter IntruderReporter, logger *logger.Logger) *Engine {
	return &Engine{policy: policy.Clone(), alerter: alerter, reporter: reporter, logger: logger}
}

// Authorized reports whether identity may enter under policy.
func Authorized(policy model.AccessPolicy, identity model.Identity) bool {
	return identity.Known && policy.Allows(identity.Designation)
}

// Evaluate decides on det. A denial raises exactly one warning naming the
// identity and forwards det to the intruder reporter; an authorized identity
// has no side effect.
func (e *Engine) Evaluate(ctx context.Context, det model.ResolvedDetection) (Decision, error) {
	if Authorized(e.policy, det.Identity) {
		return Decision{Authorized: true}, nil
	}

	name := det.Identity.DisplayName()
	e.logger.Warning("⛔ %s denied at camera %d", det.Identity.Label(), det.Camera)
	if err := e.alerter.Alert(ctx, alert.Unauthorized(name)); err != nil {
		e.logger.Error("Access alert failed: %v", err)
	}

	captured, err := e.reporter.Report(ctx, det)
	if err != nil {
		return Decision{}, fmt.Errorf("report denied %s: %w", name, err)
	}
	return Decision{Captured: captured}, nil
}

// Policy returns the policy in force.
func (e *Engine) Policy() model.AccessPolicy {
	return e.policy.Clone()
}
