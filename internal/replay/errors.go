package replay

import "errors"

var errInvariant = errors.New("replay: sum of subscription symbols does not match owner map")
