package view

import "ripple-chat/internal/observe"

// ScreenSize is the discrete layout category derived from the window width.
// The order matters: categories compare by width.
type ScreenSize int

const (
	ScreenExtraSmall ScreenSize = iota // <= 500px
	ScreenSmall                        // 501 - 1110px
	ScreenMedium                       // 1111 - 1500px
	ScreenLarge                        // > 1500px
)

func (s ScreenSize) String() string {
	switch s {
	case ScreenExtraSmall:
		return "extraSmall"
	case ScreenSmall:
		return "small"
	case ScreenMedium:
		return "medium"
	case ScreenLarge:
		return "large"
	}
	return "unknown"
}

// Classify maps a window width in pixels to its ScreenSize.
func Classify(width int) ScreenSize {
	switch {
	case width <= 500:
		return ScreenExtraSmall
	case width <= 1110:
		return ScreenSmall
	case width <= 1500:
		return ScreenMedium
	default:
		return ScreenLarge
	}
}

// Classifier republishes the screen size, but only when the category actually
// changes; resizes within a category are silent.
type Classifier struct {
	size *observe.Signal[ScreenSize]
}

func NewClassifier() *Classifier {
	return &Classifier{size: observe.NewSignal(ScreenLarge)}
}

func (c *Classifier) Current() ScreenSize {
	return c.size.Get()
}

func (c *Classifier) OnResize(width int) {
	next := Classify(width)
	if next != c.size.Get() {
		c.size.Set(next)
	}
}

func (c *Classifier) Subscribe(fn func(ScreenSize)) func() {
	return c.size.Subscribe(fn)
}
