package identity

import (
	"errors"
	"reflect"
)

// Invalid-argument sentinels. The stores return these before touching
// storage; hitting one signals a programming error in the caller.
var (
	ErrNilUser            = errors.New("identity: user is nil")
	ErrNilRole            = errors.New("identity: role is nil")
	ErrEmptyUserID        = errors.New("identity: user id is empty")
	ErrEmptyUserName      = errors.New("identity: user name is empty")
	ErrEmptyEmail         = errors.New("identity: email is empty")
	ErrEmptyPhoneNumber   = errors.New("identity: phone number is empty")
	ErrEmptyRoleName      = errors.New("identity: role name is empty")
	ErrEmptyPasswordHash  = errors.New("identity: password hash is empty")
	ErrEmptySecurityStamp = errors.New("identity: security stamp is empty")
	ErrEmptyClaimType     = errors.New("identity: claim type is empty")
	ErrEmptyLogin         = errors.New("identity: login provider or key is empty")
)

// nilModel reports whether a generic model argument is nil, including a
// typed nil pointer handed through the type parameter.
func nilModel(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
