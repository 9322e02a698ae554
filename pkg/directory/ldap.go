// pkg/directory/ldap.go
//
// Domain directory access. One bound LDAP connection per domainConn,
// dialed against the configured DC or the domain's own DNS name.

package directory

import (
	"context"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-ldap/ldap/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Attribute sets for the two entry shapes we read.
var (
	principalAttrs = []string{"sAMAccountName", "objectClass", "description", "lastLogonTimestamp"}
	groupAttrs     = []string{"sAMAccountName", "description", "member"}
)

type domainConn struct {
	conn   *ldap.Conn
	baseDN string
	domain string
}

// dialDomain binds to the domain directory with the configured
// credentials.
func dialDomain(ctx context.Context, cfg Config) (*domainConn, error) {
	if err := cfg.RequireRemote(); err != nil {
		return nil, err
	}
	if cfg.Domain == "" {
		return nil, argus_err.NewValidationError(
			"no domain configured: set --domain or ARGUS_DOMAIN")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	url := cfg.LDAPURL()
	conn, err := ldap.DialURL(url, ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}))
	if err != nil {
		return nil, argus_err.NewConnectivityError(
			fmt.Sprintf("failed to connect to directory at %s", url), err)
	}
	conn.SetTimeout(cfg.Timeout)

	if err := conn.Bind(bindName(cfg), cfg.BindPassword); err != nil {
		_ = conn.Close()
		return nil, argus_err.NewConnectivityError(
			fmt.Sprintf("directory bind as %s failed", cfg.BindUser), err)
	}

	otelzap.Ctx(ctx).Debug("Bound to domain directory",
		zap.String("url", url), zap.String("base_dn", cfg.BaseDN()))

	return &domainConn{conn: conn, baseDN: cfg.BaseDN(), domain: cfg.Domain}, nil
}

// bindName turns a bare account name into a UPN. Names already carrying
// an @, a backslash, or DN syntax pass through untouched.
func bindName(cfg Config) string {
	u := cfg.BindUser
	if strings.ContainsAny(u, "@\\=") {
		return u
	}
	return u + "@" + cfg.Domain
}

func (dc *domainConn) Close() error {
	if dc.conn == nil {
		return nil
	}
	err := dc.conn.Close()
	dc.conn = nil
	return err
}

// findUser looks a user up by account name.
func (dc *domainConn) findUser(ctx context.Context, domain, identity string) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	filter := fmt.Sprintf("(&(objectCategory=person)(objectClass=user)(sAMAccountName=%s))",
		ldap.EscapeFilter(identity))
	req := ldap.NewSearchRequest(dc.baseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		0, 0, false, filter, principalAttrs, nil)

	res, err := dc.conn.Search(req)
	if err != nil {
		return Principal{}, cerr.Wrapf(err, "search for user %q", identity)
	}
	if len(res.Entries) == 0 {
		return Principal{}, argus_err.NewNotFoundError("user %q not found in %s", identity, domain)
	}
	if len(res.Entries) > 1 {
		otelzap.Ctx(ctx).Warn("Account name matched multiple entries, using first",
			zap.String("identity", identity), zap.Int("matches", len(res.Entries)))
	}
	return dc.entryToPrincipal(res.Entries[0]), nil
}

// lookupGroup resolves a domain group and captures its member DNs.
func (dc *domainConn) lookupGroup(ctx context.Context, domain, name, sourceMachine string) (GroupHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := fmt.Sprintf("(&(objectClass=group)(sAMAccountName=%s))", ldap.EscapeFilter(name))
	req := ldap.NewSearchRequest(dc.baseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		0, 0, false, filter, groupAttrs, nil)

	res, err := dc.conn.Search(req)
	if err != nil {
		return nil, cerr.Wrapf(err, "search for group %q", name)
	}
	if len(res.Entries) == 0 {
		return nil, argus_err.NewNotFoundError("group %q not found in %s", name, domain)
	}

	entry := res.Entries[0]
	return &domainGroupHandle{
		dc:            dc,
		dn:            entry.DN,
		name:          netbiosName(domain) + `\` + entry.GetAttributeValue("sAMAccountName"),
		memberDNs:     entry.GetAttributeValues("member"),
		sourceMachine: sourceMachine,
	}, nil
}

func (dc *domainConn) entryToPrincipal(entry *ldap.Entry) Principal {
	p := Principal{
		Name:        netbiosName(dc.domain) + `\` + entry.GetAttributeValue("sAMAccountName"),
		Kind:        ParseKind(entry.GetAttributeValues("objectClass")...),
		Description: entry.GetAttributeValue("description"),
	}
	if raw := entry.GetAttributeValue("lastLogonTimestamp"); raw != "" {
		p.LastLogon = filetimeToTime(raw)
	}
	return p
}

// resolveDN reads one entry by its distinguished name.
func (dc *domainConn) resolveDN(ctx context.Context, dn string) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	req := ldap.NewSearchRequest(dn, ldap.ScopeBaseObject, ldap.NeverDerefAliases,
		0, 0, false, "(objectClass=*)", principalAttrs, nil)
	res, err := dc.conn.Search(req)
	if err != nil {
		return Principal{}, err
	}
	if len(res.Entries) == 0 {
		return Principal{}, ldap.NewError(ldap.LDAPResultNoSuchObject, cerr.Newf("no entry at %s", dn))
	}
	return dc.entryToPrincipal(res.Entries[0]), nil
}

// findDN maps an account name to its distinguished name, for membership
// modifications that must speak in DNs.
func (dc *domainConn) findDN(ctx context.Context, identity string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filter := fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(identity))
	req := ldap.NewSearchRequest(dc.baseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		0, 0, false, filter, []string{"distinguishedName"}, nil)

	res, err := dc.conn.Search(req)
	if err != nil {
		return "", cerr.Wrapf(err, "search for %q", identity)
	}
	if len(res.Entries) == 0 {
		return "", argus_err.NewNotFoundError("principal %q not found in %s", identity, dc.domain)
	}
	return res.Entries[0].DN, nil
}

// domainGroupHandle is a GroupHandle over one AD group entry. Member DNs
// are captured at lookup time; Members resolves each to a principal.
type domainGroupHandle struct {
	dc            *domainConn
	dn            string
	name          string
	memberDNs     []string
	sourceMachine string
}

func (h *domainGroupHandle) Name() string { return h.name }

func (h *domainGroupHandle) Members(ctx context.Context) ([]Principal, error) {
	logger := otelzap.Ctx(ctx)
	members := make([]Principal, 0, len(h.memberDNs))
	for _, dn := range h.memberDNs {
		p, err := h.dc.resolveDN(ctx, dn)
		if err != nil {
			// Foreign security principals and tombstones fail base
			// lookups; keep what the DN itself tells us.
			if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
				logger.Debug("Member DN did not resolve, keeping CN only", zap.String("dn", dn))
				members = append(members, Principal{Name: dnLeaf(dn), Kind: KindUnknown, SourceMachine: h.sourceMachine})
				continue
			}
			return nil, cerr.Wrapf(err, "resolve member %s of %s", dn, h.name)
		}
		p.SourceMachine = h.sourceMachine
		members = append(members, p)
	}
	return members, nil
}

func (h *domainGroupHandle) AddMember(ctx context.Context, member string) error {
	dn, err := h.dc.findDN(ctx, memberLeaf(member))
	if err != nil {
		return err
	}

	mod := ldap.NewModifyRequest(h.dn, nil)
	mod.Add("member", []string{dn})
	if err := h.dc.conn.Modify(mod); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultEntryAlreadyExists) ||
			ldap.IsErrorWithCode(err, ldap.LDAPResultAttributeOrValueExists) {
			return cerr.Wrapf(ErrAlreadyMember, "%s in %s", member, h.name)
		}
		return argus_err.NewMutationError(
			fmt.Sprintf("add %s to %s rejected by directory", member, h.name), err)
	}
	h.memberDNs = append(h.memberDNs, dn)
	return nil
}

func (h *domainGroupHandle) RemoveMember(ctx context.Context, member string) error {
	dn, err := h.dc.findDN(ctx, memberLeaf(member))
	if err != nil {
		return err
	}

	mod := ldap.NewModifyRequest(h.dn, nil)
	mod.Delete("member", []string{dn})
	if err := h.dc.conn.Modify(mod); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchAttribute) {
			return cerr.Wrapf(ErrNotMember, "%s in %s", member, h.name)
		}
		return argus_err.NewMutationError(
			fmt.Sprintf("remove %s from %s rejected by directory", member, h.name), err)
	}
	for i, d := range h.memberDNs {
		if strings.EqualFold(d, dn) {
			h.memberDNs = append(h.memberDNs[:i], h.memberDNs[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op; the LDAP connection belongs to the machineConn.
func (h *domainGroupHandle) Close() error { return nil }

// netbiosName approximates the short domain name from the first DNS label.
func netbiosName(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	return strings.ToUpper(label)
}

// memberLeaf strips a DOMAIN\ qualifier so account names can be searched.
func memberLeaf(name string) string {
	_, leaf := SplitQualified(name)
	return leaf
}

// dnLeaf pulls the leading CN value out of a distinguished name.
func dnLeaf(dn string) string {
	first, _, _ := strings.Cut(dn, ",")
	if _, v, ok := strings.Cut(first, "="); ok {
		return v
	}
	return dn
}

// filetimeToTime converts an AD timestamp (100ns ticks since 1601) to
// time.Time. Zero and the sentinel max value both mean "never".
func filetimeToTime(raw string) time.Time {
	var ft int64
	if _, err := fmt.Sscan(raw, &ft); err != nil || ft <= 0 || ft == math.MaxInt64 {
		return time.Time{}
	}
	const epochDelta = 116444736000000000 // 1601 -> 1970 in 100ns ticks
	if ft <= epochDelta {
		return time.Time{}
	}
	return time.Unix((ft-epochDelta)/10000000, 0).UTC()
}
