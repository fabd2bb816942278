package llm

import (
	"strings"

	"github.com/Rrens/chatbot-api/internal/domain"
)

// ProviderRole maps a stored turn role onto a provider's role vocabulary.
// "user" stays "user"; every other role becomes modelRole.
func ProviderRole(role domain.Role, modelRole string) string {
	if role == domain.RoleUser {
		return "user"
	}
	return modelRole
}

// LastUserTurn returns the final turn of req, which must be authored by the user
func LastUserTurn(req Request) (domain.Turn, bool) {
	if len(req.Turns) == 0 {
		return domain.Turn{}, false
	}
	last := req.Turns[len(req.Turns)-1]
	return last, last.Role == domain.RoleUser
}

// JoinText concatenates the text fragments of a reply
func JoinText(parts []string) string {
	return strings.Join(parts, "")
}
