package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseCSS parses a stylesheet. Only .class and #id selectors are kept (a comma list yields
// one rule per selector); @rules and other selectors are skipped. Later rules override
// earlier for the same selector.
func ParseCSS(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	p := css.NewParser(parse.NewInput(strings.NewReader(content)), false)

	var selectors []string
	var props map[string]string
	atDepth := 0
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if err == io.EOF {
				return sheet, nil
			}
			if err != nil {
				return sheet, fmt.Errorf("ui: parse css: %w", err)
			}
			// recoverable: the parser skips the bad token
		case css.BeginAtRuleGrammar:
			atDepth++
		case css.EndAtRuleGrammar:
			if atDepth > 0 {
				atDepth--
			}
		case css.BeginRulesetGrammar:
			selectors = nil
			props = nil
			if atDepth > 0 {
				continue
			}
			for _, sel := range strings.Split(joinTokens(p.Values(), ""), ",") {
				sel = strings.TrimSpace(sel)
				if len(sel) >= 2 && (sel[0] == '.' || sel[0] == '#') && !strings.ContainsAny(sel, " >+~:[") {
					selectors = append(selectors, sel)
				}
			}
			if len(selectors) > 0 {
				props = make(map[string]string)
			}
		case css.DeclarationGrammar:
			if props == nil {
				continue
			}
			props[strings.ToLower(string(data))] = joinTokens(p.Values(), " ")
		case css.EndRulesetGrammar:
			for _, sel := range selectors {
				rule := Rule{Selector: sel, Props: make(map[string]string, len(props))}
				for k, v := range props {
					rule.Props[k] = v
				}
				sheet.Rules = append(sheet.Rules, rule)
			}
			selectors = nil
			props = nil
		}
	}
}

// joinTokens concatenates token data, dropping whitespace tokens and putting sep between
// the remaining ones.
func joinTokens(tokens []css.Token, sep string) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			continue
		}
		if b.Len() > 0 && sep != "" {
			b.WriteString(sep)
		}
		b.Write(t.Data)
	}
	return b.String()
}
