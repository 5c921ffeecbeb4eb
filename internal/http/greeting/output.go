package greeting

const (
	contentTypeText = "text/plain; charset=utf-8"
	allowedMethods  = "GET, HEAD, OPTIONS"
)

// GetOutput is the plain-text greeting response.
type GetOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// HeadOutput carries the headers of GetOutput without the body.
type HeadOutput struct {
	ContentType   string `header:"Content-Type"`
	ContentLength int    `header:"Content-Length"`
}

// OptionsOutput lists the methods served on the greeting path.
type OptionsOutput struct {
	Allow string `header:"Allow"`
}
