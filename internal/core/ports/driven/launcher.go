package driven

// Launcher opens a URL in the analyst's browser. The side effect is
// fire-and-forget: implementations must never block the caller on the
// browser process, and failures are swallowed.
type Launcher interface {
	Open(url string)
}
