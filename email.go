package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/miekg/dns"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

var emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

// emailExtractor scans a business homepage for a plausible contact email.
// Every failure mode degrades to "no email found"; nothing escalates past
// this boundary. The rejection list and the MX lookup are injectable.
type emailExtractor struct {
	client     *http.Client
	rejectList []string
	verifyMX   bool
	lookupMX   func(domain string) bool
}

func newEmailExtractor(cfg config) *emailExtractor {
	rejectList := cfg.EmailRejectList
	if rejectList == nil {
		rejectList = defaultEmailRejectList
	}
	timeout := cfg.WebsiteTimeout
	if timeout <= 0 {
		timeout = defaultWebsiteTimeout
	}
	return &emailExtractor{
		client:     &http.Client{Timeout: timeout},
		rejectList: rejectList,
		verifyMX:   cfg.VerifyMX,
		lookupMX:   hasMXRecords,
	}
}

// extract fetches the homepage and returns the first acceptable email in
// document order, or "" if none survives. Regex matches over the raw body
// are tried first; mailto: anchors are a fallback for pages that only
// expose the address through markup (e.g. entity-encoded text).
func (x *emailExtractor) extract(ctx context.Context, websiteURL string) string {
	if strings.TrimSpace(websiteURL) == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, websiteURL, nil)
	if err != nil {
		log.Printf("Error fetching email from %s: %v", websiteURL, err)
		return ""
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := x.client.Do(req)
	if err != nil {
		log.Printf("Error fetching email from %s: %v", websiteURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebsiteResponseSize))
	if err != nil {
		log.Printf("Error reading %s: %v", websiteURL, err)
		return ""
	}

	if email := x.firstAcceptable(emailRegex.FindAllString(string(body), -1)); email != "" {
		return email
	}
	return x.firstMailto(bytes.NewReader(body))
}

func (x *emailExtractor) firstAcceptable(candidates []string) string {
	for _, candidate := range candidates {
		if x.acceptable(candidate) {
			return candidate
		}
	}
	return ""
}

func (x *emailExtractor) acceptable(email string) bool {
	lower := strings.ToLower(email)
	for _, bad := range x.rejectList {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	if x.verifyMX && !x.lookupMX(emailDomain(email)) {
		return false
	}
	return true
}

func (x *emailExtractor) firstMailto(r io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ""
	}

	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			return true
		}
		addr := href[len("mailto:"):]
		if idx := strings.Index(addr, "?"); idx != -1 {
			addr = addr[:idx]
		}
		addr = strings.TrimSpace(addr)
		if addr == "" || !emailRegex.MatchString(addr) || !x.acceptable(addr) {
			return true
		}
		found = addr
		return false
	})
	return found
}

func emailDomain(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// hasMXRecords asks public resolvers whether the domain can receive mail.
// Used only when VERIFY_MX is on.
func hasMXRecords(domain string) bool {
	if domain == "" {
		return false
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	msg.RecursionDesired = true

	client := new(dns.Client)
	for _, server := range []string{"8.8.8.8:53", "1.1.1.1:53"} {
		resp, _, err := client.Exchange(msg, server)
		if err != nil || resp == nil {
			continue
		}
		if resp.Rcode == dns.RcodeSuccess && len(resp.Answer) > 0 {
			return true
		}
	}
	return false
}
