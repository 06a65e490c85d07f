// Package aggregate composes values pulled from several independent,
// potentially-failing sources into one consistent view.
//
// A Composer is declared once with the fields of the view, each naming the
// sources it depends on and a per-field policy for outages:
//
//	composer, _ := aggregate.NewComposer(
//		aggregate.Field{
//			Name:      "open_opportunities",
//			DependsOn: []aggregate.SourceID{"opportunities"},
//			Policy:    aggregate.CarryPrevious,
//			Compute: func(in aggregate.Inputs, now time.Time) any {
//				return countOpen(in.Value("opportunities"))
//			},
//		},
//	)
//
// Collect gathers the source values concurrently, treating failures and
// timeouts as "source unavailable" rather than errors that unwind the caller.
// Compose is pure: given the collected values, the previous view, and a
// reference instant it produces a new View, carrying or omitting the fields
// whose sources were unavailable. A field is never silently zeroed by an
// outage.
package aggregate
