package routing

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PrefixDelimiter separates the routing token from the free text of a report
// file name, as in Finance__Q1.pdf.
const PrefixDelimiter = "__"

// Matcher picks the rule that applies to a file name. It never touches the
// filesystem and is safe for concurrent use.
type Matcher struct {
	reportsRoot string
}

// NewMatcher creates a Matcher whose decisions point below reportsRoot.
func NewMatcher(reportsRoot string) *Matcher {
	return &Matcher{reportsRoot: reportsRoot}
}

// ExtractToken returns the routing token of fileName: the text before the
// first delimiter, or the stem without extension when there is none.
func ExtractToken(fileName string) string {
	if idx := strings.Index(fileName, PrefixDelimiter); idx >= 0 {
		return fileName[:idx]
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// Match returns the decision for fileName against rules. A matched decision
// has outcome ROUTED and the destination it would be moved to.
//
// Among matching active rules the longest prefix wins; ties go to the lowest
// Priority, then the lowest ID. The result does not depend on the order of
// rules.
func (m *Matcher) Match(fileName string, rules []PathRule) RoutingDecision {
	if err := validateFileName(fileName); err != nil {
		return RoutingDecision{FileName: fileName, Outcome: OutcomeError, Reason: err.Error()}
	}

	token := ExtractToken(fileName)
	lowerToken := strings.ToLower(token)
	lowerName := strings.ToLower(fileName)

	var best *PathRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Active || rule.Prefix == "" {
			continue
		}

		prefix := strings.ToLower(rule.Prefix)
		if lowerToken != prefix && !strings.HasPrefix(lowerName, prefix) {
			continue
		}

		if best == nil || better(rule, best) {
			best = rule
		}
	}

	if best == nil {
		return RoutingDecision{
			FileName: fileName,
			Outcome:  OutcomeNoMatch,
			Reason:   fmt.Sprintf("no rule matches prefix %s", token),
		}
	}

	ruleID := best.ID
	decision := RoutingDecision{
		FileName:      fileName,
		MatchedRuleID: &ruleID,
	}

	dest, folder, err := ResolveDestination(m.reportsRoot, best.DestinationFolder, fileName)
	if err != nil {
		decision.Outcome = OutcomeError
		decision.Reason = err.Error()
		return decision
	}

	decision.Outcome = OutcomeRouted
	decision.DestinationFolder = folder
	decision.DestinationPath = dest
	return decision
}

// better reports whether a outranks b.
func better(a, b *PathRule) bool {
	if len(a.Prefix) != len(b.Prefix) {
		return len(a.Prefix) > len(b.Prefix)
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID < b.ID
}

// ResolveDestination joins reportsRoot, folder and fileName. It rejects
// folders that are absolute or climb out of reportsRoot and file names that
// are not a bare base name. The cleaned folder is returned alongside the path.
func ResolveDestination(reportsRoot, folder, fileName string) (string, string, error) {
	if err := validateFileName(fileName); err != nil {
		return "", "", err
	}

	cleaned, err := CleanFolder(folder)
	if err != nil {
		return "", "", err
	}

	return filepath.Join(reportsRoot, cleaned, fileName), cleaned, nil
}

// CleanFolder normalizes a folder relative to the reports root and rejects
// empty, absolute and escaping folders.
func CleanFolder(folder string) (string, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return "", fmt.Errorf("destination folder is empty")
	}
	if filepath.IsAbs(folder) {
		return "", fmt.Errorf("destination folder %q must be relative", folder)
	}

	cleaned := filepath.Clean(folder)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("destination folder %q escapes the reports root", folder)
	}
	return cleaned, nil
}

func validateFileName(fileName string) error {
	if fileName == "" || fileName == "." || fileName == ".." {
		return fmt.Errorf("invalid file name %q", fileName)
	}
	if strings.ContainsRune(fileName, filepath.Separator) || strings.ContainsRune(fileName, '/') || filepath.Base(fileName) != fileName {
		return fmt.Errorf("file name %q must not contain a path", fileName)
	}
	return nil
}
