// Package sweep periodically re-evaluates open journeys so alerts are raised
// and escalated even when a stuck worker never touches the API again.
package sweep

// TaskAlertSweep re-evaluates every open journey against the working limits.
const TaskAlertSweep = "alerts:sweep"
