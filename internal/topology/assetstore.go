package topology

import (
	"fmt"
	"regexp"

	"github.com/vk/webstack/internal/resourceid"
)

// Removal policies of the asset store.
const (
	RemovalRetain  = "retain"
	RemovalDestroy = "destroy"
)

// ObjectOwnershipEnforced disables object ACLs entirely; the bucket owner
// owns every object and access is governed by policy alone.
const ObjectOwnershipEnforced = "BucketOwnerEnforced"

const abortIncompleteUploadDays = 7

var assetNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,30}$`)

// PublicReadConsent is the explicit confirmation required to make the asset
// store world-readable. The zero value keeps the store private.
type PublicReadConsent struct {
	granted bool
	reason  string
}

// ConsentPublicRead opts the store into public read. The reason documents
// why the bucket is public and must not be empty.
func ConsentPublicRead(reason string) PublicReadConsent {
	return PublicReadConsent{granted: true, reason: reason}
}

// Enabled reports whether public read was requested.
func (c PublicReadConsent) Enabled() bool { return c.granted }

// Reason returns the documented justification for public read.
func (c PublicReadConsent) Reason() string { return c.reason }

// AssetStoreOptions are the recognized asset store settings.
type AssetStoreOptions struct {
	Versioned          bool
	PublicRead         PublicReadConsent
	DestroyOnTeardown  bool
	AutoPurgeOnDestroy bool
	// BlockACLsOnly blocks object-level ACLs while leaving bucket policies
	// free to grant access. Object ownership is always enforced, so a
	// private store blocks ACLs either way and false only yields a warning.
	BlockACLsOnly bool
	// NoncurrentVersionExpirationDays expires old object versions of a
	// versioned store. Zero keeps them forever.
	NoncurrentVersionExpirationDays int
}

// PublicAccessBlock mirrors the four bucket-level public access switches.
type PublicAccessBlock struct {
	BlockPublicACLs       bool
	IgnorePublicACLs      bool
	BlockPublicPolicy     bool
	RestrictPublicBuckets bool
}

// LifecycleRule is an object lifecycle rule of the asset store.
type LifecycleRule struct {
	ID                              string
	NoncurrentVersionExpirationDays int
	AbortIncompleteUploadDays       int
}

// AssetStoreHandle describes the provisioned asset store and exposes the
// identifiers downstream builders scope their grants to.
type AssetStoreHandle struct {
	Address    resourceid.Address
	BucketName string
	// ARN identifies the bucket itself, ObjectsARN every object inside it.
	ARN               string
	ObjectsARN        string
	BaseURL           string
	Versioned         bool
	PublicRead        bool
	PublicReadReason  string
	PublicAccessBlock PublicAccessBlock
	ObjectOwnership   string
	RemovalPolicy     string
	AutoPurge         bool
	// Policy is the bucket policy; nil for a private store.
	Policy         *PolicyDocument
	LifecycleRules []LifecycleRule
	Tags           map[string]string
	Warnings       []Warning
}

// ResourceScopes returns the identifiers a least-privilege reader of this
// store is scoped to.
func (h *AssetStoreHandle) ResourceScopes() []string {
	return []string{h.ARN, h.ObjectsARN}
}

// BuildAssetStore declares the static asset bucket. Public read is only
// granted through the bucket policy, so it requires BlockACLsOnly.
func BuildAssetStore(stack *Stack, name string, opts AssetStoreOptions) (*AssetStoreHandle, error) {
	addr, err := logicalAddress("asset_store", name)
	if err != nil {
		return nil, err
	}
	res := addr.String()

	if !assetNameRegex.MatchString(name) {
		return nil, configErr(res, "name", "%q must be 1-31 lowercase alphanumerics or dashes", name)
	}
	if opts.PublicRead.Enabled() {
		if !opts.BlockACLsOnly {
			return nil, &PolicyConflictError{
				Resource: res,
				Reason:   "public read must be granted by bucket policy; object ACLs have to be blocked (block_acls_only = true)",
			}
		}
		if opts.PublicRead.Reason() == "" {
			return nil, configErr(res, "public_read_reason", "must document why the store is public")
		}
	}
	if opts.NoncurrentVersionExpirationDays < 0 {
		return nil, configErr(res, "noncurrent_version_expiration_days", "must not be negative")
	}

	bucket := stack.PhysicalName(addr, 63)
	bucketARN := stack.ARN("s3", bucket, false)
	h := &AssetStoreHandle{
		Address:          addr,
		BucketName:       bucket,
		ARN:              bucketARN,
		ObjectsARN:       bucketARN + "/*",
		BaseURL:          fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, stack.Region),
		Versioned:        opts.Versioned,
		PublicRead:       opts.PublicRead.Enabled(),
		PublicReadReason: opts.PublicRead.Reason(),
		ObjectOwnership:  ObjectOwnershipEnforced,
		RemovalPolicy:    RemovalRetain,
		Tags:             stack.TagsFor(addr),
	}

	if h.PublicRead {
		h.PublicAccessBlock = PublicAccessBlock{BlockPublicACLs: true, IgnorePublicACLs: true}
		h.Policy = &PolicyDocument{
			Version: PolicyVersion,
			Statement: []Statement{{
				Sid:       "PublicReadGetObject",
				Effect:    "Allow",
				Principal: &Principal{Anyone: true},
				Action:    []string{"s3:GetObject"},
				Resource:  []string{h.ObjectsARN},
			}},
		}
	} else {
		h.PublicAccessBlock = PublicAccessBlock{
			BlockPublicACLs:       true,
			IgnorePublicACLs:      true,
			BlockPublicPolicy:     true,
			RestrictPublicBuckets: true,
		}
	}

	if !h.PublicRead && !opts.BlockACLsOnly {
		h.Warnings = append(h.Warnings, Warning{
			Resource: res,
			Message:  "block_acls_only = false is ignored because object ownership is enforced on the store",
		})
	}

	if opts.DestroyOnTeardown {
		h.RemovalPolicy = RemovalDestroy
		h.AutoPurge = opts.AutoPurgeOnDestroy
	} else if opts.AutoPurgeOnDestroy {
		h.Warnings = append(h.Warnings, Warning{
			Resource: res,
			Message:  "auto_purge_on_destroy is ignored because destroy_on_teardown is false",
		})
	}

	h.LifecycleRules = append(h.LifecycleRules, LifecycleRule{
		ID:                        "abort-incomplete-uploads",
		AbortIncompleteUploadDays: abortIncompleteUploadDays,
	})
	if opts.Versioned && opts.NoncurrentVersionExpirationDays > 0 {
		h.LifecycleRules = append(h.LifecycleRules, LifecycleRule{
			ID:                              "expire-noncurrent-versions",
			NoncurrentVersionExpirationDays: opts.NoncurrentVersionExpirationDays,
		})
	}

	return h, nil
}
