// Package detect provides guardrail detectors that scan prompt text
// for adversarial content.
//
// Two detector kinds are provided. StaticDetector runs a fixed,
// configured pattern list. LearnedDetector runs the regexes the learner
// synthesized from attack feedback, refreshing its compiled set on
// demand so learned patterns take effect without a restart.
package detect
