package messaging

// DefaultTable is the handler wiring used by real training runs. Every
// message kind appears here; BatchProgress is listed with no handlers on
// purpose so dispatching it stays legal and silent. Within a kind,
// console handlers come before backend handlers.
func DefaultTable() HandlerTable {
	return HandlerTable{
		KindRunStarted:     {logStartToConsole, logParamsToRun},
		KindEpochStarted:   {logEpochToConsole},
		KindBatchStarted:   {logBatchStartToConsole},
		KindBatchCompleted: {logBatchEndToConsole, observeBatch},
		KindBatchProgress:  {},
		KindMetrics:        {logMetricsToConsole, logMetricsToScalars, logMetricsToRun, observeMetrics},
		KindResults:        {logResultsToScalars},
		KindImages:         {logImagesToRun},
		KindModelTrained:   {logModelToStore},
	}
}
