package render

// SwapMode defines HTMX swap strategies for how response HTML replaces the target.
//
// Event responses swap into the document root with SwapInner unless the
// Document is created with WithSwap.
//
// See https://htmx.org/attributes/hx-swap/ for visual examples.
type SwapMode string

const (
	// SwapOuter replaces the entire element including its tag (outerHTML).
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces only the element's contents, preserving the outer tag (innerHTML).
	SwapInner SwapMode = "innerHTML"

	// SwapBeforeEnd appends the response to the end of the target's contents.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapAfterBegin prepends the response to the start of the target's contents.
	SwapAfterBegin SwapMode = "afterbegin"

	// SwapNone performs no swap - response is discarded.
	SwapNone SwapMode = "none"
)
