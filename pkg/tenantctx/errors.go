package tenantctx

import "errors"

var ErrNotBound = errors.New("tenantctx: no database bound to context")
