// Package audit performs an external security posture scan of a business
// domain: exposed remote-access and database ports, missing email
// authentication records, and TLS certificate health. The result is a
// deduction score used to pre-qualify applicants for coverage.
package audit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/infinity-soul/risk-cli/internal/config"
)

// Severity labels an audit issue.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
)

// Issue is one scored finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Impact   int      `json:"impact"`
}

// Report is the complete audit result. The score starts at 100 and each
// finding subtracts its impact.
type Report struct {
	Domain                  string         `json:"domain"`
	Timestamp               time.Time      `json:"timestamp"`
	Checks                  map[string]any `json:"checks"`
	Score                   int            `json:"score"`
	RiskLevel               string         `json:"risk_level"`
	Issues                  []Issue        `json:"issues"`
	Recommendations         []string       `json:"recommendations"`
	InsuranceRecommendation string         `json:"insurance_recommendation"`
}

// Dialer probes TCP reachability. The production implementation is a
// net.Dialer; tests inject fakes.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Resolver looks up DNS TXT records.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// CertFetcher retrieves the expiry of a host's TLS leaf certificate.
type CertFetcher interface {
	FetchNotAfter(ctx context.Context, host string) (time.Time, error)
}

// HandshakeError marks a TLS-level failure, as opposed to the host simply
// not serving HTTPS. The distinction changes the deduction.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string { return "tls handshake: " + e.Err.Error() }
func (e *HandshakeError) Unwrap() error { return e.Err }

// riskyPorts are probed in order after the dedicated RDP check. Ports that
// expose unauthenticated file or shell access rate critical.
var riskyPorts = []struct {
	port     int
	service  string
	critical bool
}{
	{21, "FTP", true},
	{22, "SSH", false},
	{23, "Telnet", true},
	{445, "SMB", true},
	{3306, "MySQL", false},
	{5432, "PostgreSQL", false},
	{6379, "Redis", false},
	{27017, "MongoDB", false},
}

// Auditor runs the scan. Probes are rate limited so a scan never looks like
// a port sweep to the target's IDS.
type Auditor struct {
	dialer   Dialer
	resolver Resolver
	certs    CertFetcher
	limiter  *rate.Limiter
	timeout  time.Duration
	warnDays int
	now      func() time.Time
}

// Option overrides a prober, for tests and for callers with custom
// transports.
type Option func(*Auditor)

func WithDialer(d Dialer) Option            { return func(a *Auditor) { a.dialer = d } }
func WithResolver(r Resolver) Option        { return func(a *Auditor) { a.resolver = r } }
func WithCertFetcher(cf CertFetcher) Option { return func(a *Auditor) { a.certs = cf } }
func WithClock(now func() time.Time) Option { return func(a *Auditor) { a.now = now } }

// New builds an Auditor from configuration.
func New(cfg config.AuditConfig, opts ...Option) *Auditor {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	probesPerSec := cfg.ProbesPerSec
	if probesPerSec <= 0 {
		probesPerSec = 4
	}
	warnDays := cfg.TLSWarningDays
	if warnDays <= 0 {
		warnDays = 30
	}

	a := &Auditor{
		dialer:   &net.Dialer{Timeout: 3 * time.Second},
		resolver: net.DefaultResolver,
		certs:    &tlsFetcher{timeout: 5 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(probesPerSec), 1),
		timeout:  timeout,
		warnDays: warnDays,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run audits the domain and returns the scored report. The scan itself
// never fails a run; unreachable probes are recorded as skipped checks.
func (a *Auditor) Run(ctx context.Context, domain string) (*Report, error) {
	domain, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	r := &Report{
		Domain:    domain,
		Timestamp: a.now().UTC(),
		Checks:    map[string]any{},
		Score:     100,
	}

	a.checkRDP(ctx, r)
	a.checkEmailSecurity(ctx, r)
	a.checkTLS(ctx, r)
	a.checkRiskyPorts(ctx, r)

	r.RiskLevel = riskLevel(r.Score)
	r.InsuranceRecommendation = insuranceRecommendation(r.RiskLevel)

	zap.L().Info("audit: scan complete",
		zap.String("domain", domain),
		zap.Int("score", r.Score),
		zap.String("risk_level", r.RiskLevel),
		zap.Int("issues", len(r.Issues)),
	)
	return r, nil
}

// NormalizeDomain lowercases and strips any scheme or path from the target.
func NormalizeDomain(domain string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(domain))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	d = strings.SplitN(d, "/", 2)[0]
	d = strings.TrimSuffix(d, ".")
	if d == "" || strings.ContainsAny(d, " \t") {
		return "", eris.Errorf("audit: invalid domain %q", domain)
	}
	return d, nil
}

func (a *Auditor) portOpen(ctx context.Context, domain string, port int) (bool, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return false, err
	}
	conn, err := a.dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", domain, port))
	if err != nil {
		return false, nil
	}
	conn.Close()
	return true, nil
}

func (a *Auditor) checkRDP(ctx context.Context, r *Report) {
	open, err := a.portOpen(ctx, r.Domain, 3389)
	if err != nil {
		r.Checks["rdp_exposed"] = nil
		return
	}
	r.Checks["rdp_exposed"] = open
	if open {
		a.deduct(r, Issue{
			Severity: SeverityCritical,
			Type:     "rdp_exposed",
			Message:  "RDP exposed on port 3389 (ransomware risk)",
			Impact:   40,
		}, "Disable RDP access from public internet or restrict to VPN/specific IPs")
	}
}

func (a *Auditor) checkEmailSecurity(ctx context.Context, r *Report) {
	if err := a.limiter.Wait(ctx); err != nil {
		return
	}
	records, err := a.lookupTXT(ctx, r.Domain)
	if err != nil {
		r.Checks["spf_record"] = nil
	} else {
		hasSPF := false
		for _, txt := range records {
			if strings.Contains(strings.ToLower(txt), "v=spf1") {
				hasSPF = true
				break
			}
		}
		r.Checks["spf_record"] = hasSPF
		if !hasSPF {
			a.deduct(r, Issue{
				Severity: SeverityHigh,
				Type:     "no_spf",
				Message:  "No SPF record found (phishing risk)",
				Impact:   15,
			}, "Add SPF record to DNS to prevent email spoofing")
		}
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return
	}
	records, err = a.lookupTXT(ctx, "_dmarc."+r.Domain)
	if err != nil {
		r.Checks["dmarc_record"] = nil
		return
	}
	hasDMARC := false
	for _, txt := range records {
		if strings.Contains(txt, "v=DMARC1") {
			hasDMARC = true
			break
		}
	}
	r.Checks["dmarc_record"] = hasDMARC
	if !hasDMARC {
		a.deduct(r, Issue{
			Severity: SeverityHigh,
			Type:     "no_dmarc",
			Message:  "No DMARC record found (spoofing risk)",
			Impact:   15,
		}, "Add DMARC record to DNS to protect against email spoofing")
	}
}

// lookupTXT retries transient DNS failures (timeouts, SERVFAIL-style
// temporary errors) a couple of times. NXDOMAIN and other definitive
// answers are returned immediately.
func (a *Auditor) lookupTXT(ctx context.Context, name string) ([]string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 150 * time.Millisecond):
			}
		}
		records, err := a.resolver.LookupTXT(ctx, name)
		if err == nil {
			return records, nil
		}
		lastErr = err
		var dnsErr *net.DNSError
		if !errors.As(err, &dnsErr) || !(dnsErr.IsTemporary || dnsErr.IsTimeout) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (a *Auditor) checkTLS(ctx context.Context, r *Report) {
	if err := a.limiter.Wait(ctx); err != nil {
		return
	}
	notAfter, err := a.certs.FetchNotAfter(ctx, r.Domain)
	if err != nil {
		var hs *HandshakeError
		if errors.As(err, &hs) {
			r.Checks["ssl_valid"] = false
			a.deduct(r, Issue{
				Severity: SeverityHigh,
				Type:     "ssl_invalid",
				Message:  "TLS configuration error: " + hs.Err.Error(),
				Impact:   20,
			}, "Fix TLS certificate configuration")
			return
		}
		// Host does not serve HTTPS or is unreachable; not scored.
		r.Checks["ssl_valid"] = nil
		return
	}

	days := int(notAfter.Sub(a.now().UTC()).Hours() / 24)
	r.Checks["ssl_valid"] = days > 0
	r.Checks["ssl_days_until_expiry"] = days

	switch {
	case days < 0:
		a.deduct(r, Issue{
			Severity: SeverityCritical,
			Type:     "ssl_expired",
			Message:  fmt.Sprintf("TLS certificate expired %d days ago", -days),
			Impact:   30,
		}, "Renew TLS certificate immediately")
	case days < a.warnDays:
		a.deduct(r, Issue{
			Severity: SeverityMedium,
			Type:     "ssl_expiring",
			Message:  fmt.Sprintf("TLS certificate expires in %d days", days),
			Impact:   10,
		}, "Renew TLS certificate soon to avoid service interruption")
	}
}

func (a *Auditor) checkRiskyPorts(ctx context.Context, r *Report) {
	exposed := map[string]string{}
	for _, p := range riskyPorts {
		open, err := a.portOpen(ctx, r.Domain, p.port)
		if err != nil {
			break
		}
		if !open {
			continue
		}
		exposed[fmt.Sprintf("%d", p.port)] = p.service

		severity, impact := SeverityHigh, 15
		if p.critical {
			severity, impact = SeverityCritical, 25
		}
		a.deduct(r, Issue{
			Severity: severity,
			Type:     "port_exposed",
			Message:  fmt.Sprintf("%s port %d is publicly exposed", p.service, p.port),
			Impact:   impact,
		}, fmt.Sprintf("Restrict %s (port %d) access to internal network only", p.service, p.port))
	}
	r.Checks["exposed_ports"] = exposed
}

func (a *Auditor) deduct(r *Report, issue Issue, recommendation string) {
	r.Score -= issue.Impact
	r.Issues = append(r.Issues, issue)
	r.Recommendations = append(r.Recommendations, recommendation)
}

func riskLevel(score int) string {
	switch {
	case score >= 80:
		return "LOW"
	case score >= 60:
		return "MEDIUM"
	case score >= 40:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

func insuranceRecommendation(level string) string {
	switch level {
	case "LOW":
		return "Eligible for standard cyber insurance policy"
	case "MEDIUM":
		return "Recommend security improvements before applying for cyber insurance"
	case "HIGH":
		return "Must fix critical issues before qualifying for cyber insurance"
	default:
		return "Significant security vulnerabilities - fix immediately before applying"
	}
}
