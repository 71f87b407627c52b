// Package batch implements the unattended robot order run.
//
// The executor runs one batch from start to finish:
//
//	┌──────────────────────────────────────────────┐
//	│                Batch Executor                │
//	│  open site -> fetch orders -> process rows   │
//	│  -> archive receipts -> write run summary    │
//	│  (browser session closed on every exit path) │
//	└──────────────────────┬───────────────────────┘
//	                       │ per order
//	                       ▼
//	         ┌────────────────────────────┐
//	         │  processor.Processor       │
//	         │  form.Driver + Capturer    │
//	         └────────────────────────────┘
//
// Failures of a single order never stop the batch. Only a failure to open the site
// or fetch the orders makes Run return an error.
//
// Example usage:
//
//	cfg := config.DefaultConfig()
//	executor := batch.NewExecutor(cfg, browser, orders.NewSource(cfg.OrdersFile))
//	summary, err := executor.Run(ctx)
package batch
