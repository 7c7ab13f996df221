package topology

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws/arn"
	"github.com/aws/aws-sdk-go/aws/endpoints"
	"github.com/google/uuid"
	"github.com/vk/webstack/internal/resourceid"
)

// Tag keys stamped on every taggable resource.
const (
	TagStack     = "webstack:stack"
	TagLogicalID = "webstack:logical-id"
)

var (
	stackNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{0,19}$`)
	accountIDRegex = regexp.MustCompile(`^\d{12}$`)
	regionRegex    = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)

	// nameNamespace seeds the name-based UUIDs used as physical name suffixes.
	nameNamespace = uuid.MustParse("3d9a4f0e-5b7c-4e61-9a2f-7c1e0b6d8a54")
)

// Stack is the account/region execution context of one deployment. All
// physical names and ARNs are derived from it.
type Stack struct {
	Name      string
	Region    string
	AccountID string
	Partition string
	Tags      map[string]string
}

// NewStack validates the execution context and resolves the partition the
// region belongs to.
func NewStack(name, region, accountID string, tags map[string]string) (*Stack, error) {
	const res = "stack"
	if !stackNameRegex.MatchString(name) {
		return nil, configErr(res, "name", "%q must be 1-20 lowercase alphanumerics or dashes, starting with a letter", name)
	}
	partitionID, err := partitionFor(region)
	if err != nil {
		return nil, err
	}
	if !accountIDRegex.MatchString(accountID) {
		return nil, configErr(res, "account_id", "%q must be a 12 digit account id", accountID)
	}

	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	return &Stack{
		Name:      name,
		Region:    region,
		AccountID: accountID,
		Partition: partitionID,
		Tags:      copied,
	}, nil
}

// partitionFor resolves the partition of region by the partition name
// patterns, so regions launched after the bundled endpoint table still
// resolve. Well-formed names no pattern claims fall back to the aws
// partition.
func partitionFor(region string) (string, error) {
	if !regionRegex.MatchString(region) {
		return "", configErr("stack", "region", "%q is not a valid region name", region)
	}
	if p, ok := endpoints.PartitionForRegion(endpoints.DefaultPartitions(), region); ok {
		return p.ID(), nil
	}
	return endpoints.AwsPartitionID, nil
}

// PhysicalName derives the provider-side name of a resource from the stack
// name and the resource's logical address. The result is lowercase, at most
// maxLen characters long and ends with a stable 8 character hash, so the same
// declaration always yields the same name.
func (s *Stack) PhysicalName(addr resourceid.Address, maxLen int) string {
	seed := strings.Join([]string{s.Partition, s.AccountID, s.Region, s.Name, addr.String()}, "/")
	sum := uuid.NewSHA1(nameNamespace, []byte(seed))
	suffix := hex.EncodeToString(sum[:4])

	base := s.Name + "-" + addr.Slug()
	if room := maxLen - len(suffix) - 1; len(base) > room {
		base = strings.TrimRight(base[:room], "-")
	}
	return base + "-" + suffix
}

// ARN builds an ARN for a resource owned by this stack. Global services
// (IAM, S3) pass regional=false; S3 additionally omits the account.
func (s *Stack) ARN(service, resource string, regional bool) string {
	a := arn.ARN{
		Partition: s.Partition,
		Service:   service,
		AccountID: s.AccountID,
		Resource:  resource,
	}
	if regional {
		a.Region = s.Region
	}
	if service == "s3" {
		a.AccountID = ""
	}
	return a.String()
}

// ManagedPolicyARN returns the ARN of a provider-managed IAM policy.
func (s *Stack) ManagedPolicyARN(path string) string {
	return arn.ARN{Partition: s.Partition, Service: "iam", AccountID: "aws", Resource: "policy/" + path}.String()
}

// AvailabilityZones returns the first n zone names of the stack's region.
func (s *Stack) AvailabilityZones(n int) []string {
	zones := make([]string, n)
	for i := range zones {
		zones[i] = fmt.Sprintf("%s%c", s.Region, 'a'+i)
	}
	return zones
}

// TagsFor returns the stack tags plus the identity tags of addr.
func (s *Stack) TagsFor(addr resourceid.Address) map[string]string {
	tags := make(map[string]string, len(s.Tags)+2)
	for k, v := range s.Tags {
		tags[k] = v
	}
	tags[TagStack] = s.Name
	tags[TagLogicalID] = addr.String()
	return tags
}

// SortedKeys returns the keys of m in a stable order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// logicalAddress validates a declared logical name and returns its address.
func logicalAddress(kind, name string) (resourceid.Address, error) {
	addr := resourceid.New(kind, name)
	if _, err := resourceid.Parse(addr.String()); err != nil {
		return addr, configErr(kind, "name", "%q is not a valid logical name", name)
	}
	return addr, nil
}
