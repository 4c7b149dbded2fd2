package circuitbreaker

import "github.com/sony/gobreaker/v2"

// CreateCircuitBreaker opens after at least 3 requests with a failure ratio of 60% or more.
func CreateCircuitBreaker[T any](name string) *gobreaker.CircuitBreaker[T] {
	var st gobreaker.Settings
	st.Name = name
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}

	return gobreaker.NewCircuitBreaker[T](st)
}
