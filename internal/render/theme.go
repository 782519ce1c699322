package render

// Theme holds colors for graph rendering.
type Theme struct {
	Background string
	NodeFill   string
	NodeBorder string
	TextColor  string

	// Call edge colors by invoke kind.
	EdgeVirtual   string // invoke-virtual
	EdgeInterface string // invoke-interface
	EdgeSuper     string // invoke-super
	EdgeDirect    string // invoke-direct (constructors, private)
	EdgeStatic    string // invoke-static
	EdgeDynamic   string // invoke-polymorphic, invoke-custom

	// Control flow edge colors.
	EdgeTaken     string // if-test taken
	EdgeFall      string // if-test not taken
	EdgeSwitch    string // switch case
	EdgeException string // handler

	// Node accents.
	EntryBorder  string
	TermFill     string // return/throw blocks
	DataFill     string // payload tables
	DeadFill     string // unreachable instructions
	ExternalText string // methods outside the input

	// Cluster styling.
	ClusterBorder string // subgraph cluster border
	ClusterLabel  string // subgraph cluster label text
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	NodeFill:   "white",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",

	EdgeVirtual:   "#0B3D91", // NASA blue
	EdgeInterface: "#00695C", // teal
	EdgeSuper:     "#9E9E9E", // gray
	EdgeDirect:    "#424242", // dark gray
	EdgeStatic:    "#1A1A1A",
	EdgeDynamic:   "#E65100", // deep orange

	EdgeTaken:     "#0B3D91",
	EdgeFall:      "#FC3D21", // NASA red
	EdgeSwitch:    "#00695C",
	EdgeException: "#E65100",

	EntryBorder:  "#0B3D91",
	TermFill:     "#ECEFF1", // blue-gray 50
	DataFill:     "#FFF8E1", // amber 50
	DeadFill:     "#FFEBEE", // red 50
	ExternalText: "#9E9E9E",

	ClusterBorder: "#BDBDBD",
	ClusterLabel:  "#757575",
}
