// Package core provides the widget model: tree descriptions, the type
// registry, keyed reconciliation and hit testing.
//
// # Descriptions
//
// A Description is plain data naming a widget type, an optional key, props
// and children. It is usually decoded from JSON, YAML or TOML:
//
//	root, err := core.DecodeDocument(data, core.FormatYAML)
//
// # Widgets
//
// Every widget kind embeds WidgetBase and owns exactly one render object.
// Kinds are registered by name at init time:
//
//	func init() {
//	    core.RegisterType("Spacer", func() core.Widget { return newSpacer() })
//	}
//
// CreateWidget builds a detached tree from a description. Calling
// CreateElement on a live widget with a new description updates it in
// place, reusing children whose type and key still match.
//
// # Keys
//
// A description without a key gets "<Type>-<n>" from a per-type counter.
// Explicitly keyed children are matched by key among their siblings;
// keyless ones are matched by position.
package core
