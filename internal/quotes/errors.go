package quotes

import "github.com/verandameister/quotedesk/internal/shared"

// ValidationError is returned by Build when a required field is missing.
type ValidationError = shared.ValidationError
