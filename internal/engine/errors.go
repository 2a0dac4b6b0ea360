package engine

import "errors"

// DeniedMessage is the uniform denial message. It deliberately does not
// reveal which rule failed.
const DeniedMessage = "You do not have permission to access this resource."

// ErrUnauthenticated is returned when the request carries no
// authenticated principal. It short-circuits before any policy lookup
// and is distinct from a permission denial.
var ErrUnauthenticated = errors.New("authentication required")
