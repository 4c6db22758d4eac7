package dashboard

// Markers is the structural vocabulary of the host dashboard. Every field
// is a CSS selector except ApplyAttr/ApplyAction, which identify the
// "apply changes" control inside the configuration panel by attribute value.
type Markers struct {
	Frame         string `yaml:"frame" json:"frame"`
	DashboardRoot string `yaml:"dashboard_root" json:"dashboard_root"`
	EditToggle    string `yaml:"edit_toggle" json:"edit_toggle"`
	AddComponent  string `yaml:"add_component" json:"add_component"`
	ConfigPanel   string `yaml:"config_panel" json:"config_panel"`
	ApplyAttr     string `yaml:"apply_attr" json:"apply_attr"`
	ApplyAction   string `yaml:"apply_action" json:"apply_action"`
	Component     string `yaml:"component" json:"component"`
}

// DefaultMarkers returns the vocabulary of the stock dashboard.
func DefaultMarkers() Markers {
	return Markers{
		Frame:         "iframe",
		DashboardRoot: "#dashboard",
		EditToggle:    "#ui-id-2",
		AddComponent:  "#newcomponentArea",
		ConfigPanel:   "#componentConfig",
		ApplyAttr:     "onclick",
		ApplyAction:   "dashboard.componentedit_apply();return false;",
		Component:     ".componentWrapper.componentLoading.dropshadow.ui-resizable.ui-draggable.ui-draggable-handle",
	}
}

// WithDefaults fills every empty field from DefaultMarkers.
func (m Markers) WithDefaults() Markers {
	d := DefaultMarkers()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.Frame, d.Frame)
	fill(&m.DashboardRoot, d.DashboardRoot)
	fill(&m.EditToggle, d.EditToggle)
	fill(&m.AddComponent, d.AddComponent)
	fill(&m.ConfigPanel, d.ConfigPanel)
	fill(&m.ApplyAttr, d.ApplyAttr)
	fill(&m.ApplyAction, d.ApplyAction)
	fill(&m.Component, d.Component)
	return m
}

// Line/area chart signature: a path drawn with line segments and no arcs.
const (
	lineAreaPathSelector = `svg path[d^="M"][d*="L"]`
	arcPathSelector      = `svg path[d^="M"][d*="A"]`
)
