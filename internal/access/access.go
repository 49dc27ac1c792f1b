// Package access resolves raw sender input to canonical WhatsApp JIDs and
// answers admin/blacklist membership questions. All membership checks run
// on canonical form only.
package access

import (
	"strings"

	"go.mau.fi/whatsmeow/types"

	"github.com/enessquik/wpvdbot/internal/store"
)

// defaultCountryPrefix is prepended to bare 10-digit numbers.
const defaultCountryPrefix = "90"

// Normalize resolves raw user input (a full JID or a phone number, possibly
// with punctuation) to a canonical JID. Inputs that already carry a server
// are parsed and returned as given. Bare numbers shorter than 10 digits are
// ambiguous and rejected.
func Normalize(raw string) (types.JID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.EmptyJID, false
	}
	if strings.ContainsRune(raw, '@') {
		jid, err := types.ParseJID(raw)
		if err != nil || jid.User == "" {
			return types.EmptyJID, false
		}
		return jid, true
	}
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	if len(number) < 10 {
		return types.EmptyJID, false
	}
	if len(number) == 10 && !strings.HasPrefix(number, defaultCountryPrefix) {
		number = defaultCountryPrefix + number
	}
	return types.NewJID(number, types.DefaultUserServer), true
}

// CanonicalString is Normalize for string-keyed stores.
func CanonicalString(raw string) (string, bool) {
	jid, ok := Normalize(raw)
	if !ok {
		return "", false
	}
	return jid.String(), true
}

// Roster answers role questions for inbound senders. The admin set is the
// union of the settings admin list, the environment-supplied list and the
// owner, which is always included.
type Roster struct {
	settings  *store.Settings
	blacklist *store.Blacklist
	owner     types.JID
	envAdmins []types.JID
}

// NewRoster builds a roster. Raw owner and env entries are normalized here;
// entries that fail to normalize are silently dropped.
func NewRoster(settings *store.Settings, blacklist *store.Blacklist, ownerRaw string, adminRaws []string) *Roster {
	r := &Roster{
		settings:  settings,
		blacklist: blacklist,
	}
	if owner, ok := Normalize(ownerRaw); ok {
		r.owner = owner
	}
	for _, raw := range adminRaws {
		if jid, ok := Normalize(raw); ok {
			r.envAdmins = append(r.envAdmins, jid)
		}
	}
	return r
}

// IsAdmin reports whether the sender is a bot admin.
func (r *Roster) IsAdmin(jid types.JID) bool {
	n := jid.ToNonAD()
	if !r.owner.IsEmpty() && n == r.owner {
		return true
	}
	for _, admin := range r.envAdmins {
		if n == admin {
			return true
		}
	}
	for _, raw := range r.settings.AdminJIDs() {
		if admin, ok := Normalize(raw); ok && n == admin {
			return true
		}
	}
	return false
}

// IsBlacklisted reports whether the chat identity is blocked.
func (r *Roster) IsBlacklisted(jid types.JID) bool {
	return r.blacklist.Contains(jid.ToNonAD().String())
}
