// Package testing drives a runtime against a recording surface so widget
// trees can be tested without a display.
//
// # Quick Start
//
//	func TestSubmit(t *testing.T) {
//	    tester := weavetest.NewTester(t)
//	    var submitted bool
//	    tester.Render(core.Node("Container", core.Props{
//	        "onClick": func() { submitted = true },
//	    }).Keyed("submit"))
//
//	    tester.Tap(weavetest.ByKey("submit"))
//	    if !submitted {
//	        t.Error("expected a click")
//	    }
//	}
//
// # Snapshots
//
// MatchesFile compares the layout outline against a golden file:
//
//	tester.Snapshot().MatchesFile(t, "testdata/form.snapshot")
//
// Rewrite golden files with:
//
//	WEAVE_UPDATE_SNAPSHOTS=1 go test ./...
//
// Since this package shares its name with the standard library package,
// import it with an alias:
//
//	import weavetest "github.com/go-drift/weave/pkg/testing"
package testing
