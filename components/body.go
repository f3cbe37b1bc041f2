package components

// Body holds physical properties of a bird.
type Body struct {
	Radius float32 `inspect:"label,fmt:%.1f"`
}
