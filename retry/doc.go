// Package retry adds retries and per-attempt deadlines around individual
// tasks. The executor itself never retries; resilience is opted into per
// task by wrapping it before registration:
//
//	reg.MustRegister(func() task.Task {
//		return retry.Wrap(retry.WithTimeout(newFetchTask(), 30*time.Second), retry.Policy{
//			MaxRetries:      4,
//			InitialInterval: time.Second,
//		})
//	})
//
// By default only errors marked with Transient are retried; everything else
// fails on the first attempt. Tasks mark errors at the failure site:
//
//	return task.Outputs{}, retry.Transient(fmt.Errorf("read %s: %w", path, err))
package retry
