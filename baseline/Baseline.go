package baseline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/utils"
	"gopkg.in/yaml.v3"
)

// IDSet is a set of issue ids.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	set := IDSet{}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Baseline holds the issues accepted by hand and the snapshot taken when it was last written.
type Baseline struct {
	ManuallySuppressedIssues IDSet
	CurrentIssues            IDSet
}

func New() *Baseline {
	return &Baseline{ManuallySuppressedIssues: IDSet{}, CurrentIssues: IDSet{}}
}

// IssueID identifies an issue across runs: the rule id followed by a hash of
// the rule id and the entity signature.
func IssueID(issue core.Issue) string {
	sum := sha256.Sum256([]byte(issue.RuleInstance.ID + ":" + issue.Entity.Signature))
	return issue.RuleInstance.ID + ":" + hex.EncodeToString(sum[:8])
}

// Classify splits issues into those accepted by the baseline and new ones.
func Classify(b *Baseline, issues []core.Issue) (known, fresh []core.Issue) {
	for _, issue := range issues {
		if b != nil && b.ManuallySuppressedIssues.Contains(IssueID(issue)) {
			known = append(known, issue)
		} else {
			fresh = append(fresh, issue)
		}
	}
	return known, fresh
}

type xmlBaseline struct {
	XMLName                  xml.Name `xml:"SmellBaseline"`
	ManuallySuppressedIssues xmlIDs   `xml:"ManuallySuppressedIssues"`
	CurrentIssues            xmlIDs   `xml:"CurrentIssues"`
}

type xmlIDs struct {
	IDs []string `xml:"ID"`
}

type yamlBaseline struct {
	ManuallySuppressedIssues []string `yaml:"manuallySuppressedIssues"`
	CurrentIssues            []string `yaml:"currentIssues"`
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}

func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads an XML baseline, or a YAML one for .yml and .yaml paths.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline %s: %w", path, err)
	}

	var manual, current []string
	if isYAML(path) {
		var document yamlBaseline
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("failed to parse baseline %s: %w", path, err)
		}
		manual, current = document.ManuallySuppressedIssues, document.CurrentIssues
	} else {
		var document xmlBaseline
		if err := xml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("failed to parse baseline %s: %w", path, err)
		}
		manual, current = document.ManuallySuppressedIssues.IDs, document.CurrentIssues.IDs
	}

	return &Baseline{
		ManuallySuppressedIssues: NewIDSet(trimmed(manual)...),
		CurrentIssues:            NewIDSet(trimmed(current)...),
	}, nil
}

// Save writes b with sorted ids, atomically replacing any existing file.
func Save(path string, b *Baseline) error {
	var data []byte
	if isYAML(path) {
		out, err := yaml.Marshal(yamlBaseline{
			ManuallySuppressedIssues: b.ManuallySuppressedIssues.Sorted(),
			CurrentIssues:            b.CurrentIssues.Sorted(),
		})
		if err != nil {
			return fmt.Errorf("failed to encode baseline: %w", err)
		}
		data = out
	} else {
		var buf bytes.Buffer
		buf.WriteString(xml.Header)
		encoder := xml.NewEncoder(&buf)
		encoder.Indent("", "  ")
		err := encoder.Encode(xmlBaseline{
			ManuallySuppressedIssues: xmlIDs{IDs: b.ManuallySuppressedIssues.Sorted()},
			CurrentIssues:            xmlIDs{IDs: b.CurrentIssues.Sorted()},
		})
		if err != nil {
			return fmt.Errorf("failed to encode baseline: %w", err)
		}
		buf.WriteByte('\n')
		data = buf.Bytes()
	}

	if err := utils.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write baseline: %w", err)
	}
	return nil
}

func trimmed(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
