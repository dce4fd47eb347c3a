package lti

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

/*
Login hint codec.

The platform encodes the (course, tool view, user) triple into an opaque
string that round-trips through the tool during the OIDC dance:

	c_<courseID>_b_<toolViewID>_u_<anonID>

The tool must return the hint unaltered. Encoding is pure and reversible;
Decode(Encode(h)) == h for every valid triple, and the string is safe to
carry in URL query parameters and HTML form values. No hint is ever
persisted: it is minted per login-initiation request and consumed once by
the callback validator.
*/

// LoginHint binds one launch attempt to a course, an embedding and a user.
type LoginHint struct {
	CourseID   int64
	ToolViewID int64
	UserAnonID string // UUID-shaped pseudonymous user id
}

// Encode renders the hint in its wire form.
func (h LoginHint) Encode() string {
	return fmt.Sprintf("c_%d_b_%d_u_%s", h.CourseID, h.ToolViewID, h.UserAnonID)
}

// DecodeLoginHint deconstructs a hint string. It is strict: the three-segment
// shape, numeric course and view ids, and a UUID-shaped user segment are all
// required, so a tampered hint fails instead of decoding to a different
// triple.
func DecodeLoginHint(s string) (LoginHint, error) {
	userParts := strings.SplitN(s, "_u_", 2)
	if len(userParts) != 2 || userParts[1] == "" {
		return LoginHint{}, &DecodeError{Reason: "missing user segment"}
	}
	anonID := userParts[1]
	if _, err := uuid.Parse(anonID); err != nil {
		return LoginHint{}, &DecodeError{Reason: "user segment is not a valid anon id"}
	}

	viewParts := strings.SplitN(userParts[0], "_b_", 2)
	if len(viewParts) != 2 {
		return LoginHint{}, &DecodeError{Reason: "missing view segment"}
	}
	viewID, err := strconv.ParseInt(viewParts[1], 10, 64)
	if err != nil {
		return LoginHint{}, &DecodeError{Reason: "view segment is not numeric"}
	}

	coursePart, ok := strings.CutPrefix(viewParts[0], "c_")
	if !ok {
		return LoginHint{}, &DecodeError{Reason: "missing course segment"}
	}
	courseID, err := strconv.ParseInt(coursePart, 10, 64)
	if err != nil {
		return LoginHint{}, &DecodeError{Reason: "course segment is not numeric"}
	}

	return LoginHint{CourseID: courseID, ToolViewID: viewID, UserAnonID: anonID}, nil
}
