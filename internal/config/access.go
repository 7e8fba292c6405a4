package config

import (
	"strings"

	"github.com/chukul/split-token-publisher/internal/apperr"
)

// Kind identifies the populated branch of an AccessMethod.
type Kind string

const (
	KindNone               Kind = ""
	KindEC2InstanceProfile Kind = "ec2-instance-profile"
	KindStaticKeys         Kind = "access-key-id-and-secret"
	KindProfile            Kind = "aws-profile"
)

// AccessMethod is a one-of: exactly one of its fields must be populated.
// An EC2InstanceProfile of false counts as unset.
type AccessMethod struct {
	EC2InstanceProfile bool        `yaml:"ec2_instance_profile"`
	StaticKeys         *StaticKeys `yaml:"access_key_id_and_secret"`
	Profile            *Profile    `yaml:"aws_profile"`
}

// StaticKeys is a long-lived IAM user key pair.
type StaticKeys struct {
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`

	// RoleARN, when set, is assumed with the keys before writing,
	// e.g. arn:aws:iam::123456789012:role/dynamodb-role
	RoleARN string `yaml:"aws_role_arn"`
}

// Profile resolves credentials from the shared config files (~/.aws/credentials).
type Profile struct {
	Name    string `yaml:"aws_profile_name"`
	RoleARN string `yaml:"aws_role_arn"`
}

// EC2InstanceProfileMethod returns an AccessMethod using the instance role.
func EC2InstanceProfileMethod() AccessMethod {
	return AccessMethod{EC2InstanceProfile: true}
}

// StaticKeysMethod returns an AccessMethod using a key pair and optional role.
func StaticKeysMethod(accessKeyID, secret, roleARN string) AccessMethod {
	return AccessMethod{StaticKeys: &StaticKeys{AccessKeyID: accessKeyID, AccessKeySecret: secret, RoleARN: roleARN}}
}

// ProfileMethod returns an AccessMethod using a named shared-config profile and optional role.
func ProfileMethod(name, roleARN string) AccessMethod {
	return AccessMethod{Profile: &Profile{Name: name, RoleARN: roleARN}}
}

// Kind returns the first populated branch in priority order:
// instance profile, then static keys, then profile.
func (m AccessMethod) Kind() Kind {
	switch {
	case m.EC2InstanceProfile:
		return KindEC2InstanceProfile
	case m.StaticKeys != nil:
		return KindStaticKeys
	case m.Profile != nil:
		return KindProfile
	default:
		return KindNone
	}
}

// RoleARN returns the role to assume for the active branch.
// The instance profile branch never assumes a role.
func (m AccessMethod) RoleARN() string {
	switch m.Kind() {
	case KindStaticKeys:
		return m.StaticKeys.RoleARN
	case KindProfile:
		return m.Profile.RoleARN
	default:
		return ""
	}
}

func (m AccessMethod) populated() int {
	n := 0
	if m.EC2InstanceProfile {
		n++
	}
	if m.StaticKeys != nil {
		n++
	}
	if m.Profile != nil {
		n++
	}
	return n
}

// Validate enforces the one-of and each branch's required fields.
func (m AccessMethod) Validate() error {
	switch n := m.populated(); {
	case n == 0:
		return apperr.Genericf("access_method: one of ec2_instance_profile, access_key_id_and_secret, aws_profile is required")
	case n > 1:
		return apperr.Genericf("access_method: only one access method may be configured, found %d", n)
	}

	switch m.Kind() {
	case KindStaticKeys:
		if m.StaticKeys.AccessKeyID == "" {
			return apperr.Genericf("access_key_id_and_secret: access_key_id is required")
		}
		if m.StaticKeys.AccessKeySecret == "" {
			return apperr.Genericf("access_key_id_and_secret: access_key_secret is required")
		}
		return validateRoleARN(m.StaticKeys.RoleARN)
	case KindProfile:
		if m.Profile.Name == "" {
			return apperr.Genericf("aws_profile: aws_profile_name is required")
		}
		return validateRoleARN(m.Profile.RoleARN)
	}

	return nil
}

func validateRoleARN(arn string) error {
	if arn != "" && !strings.HasPrefix(arn, "arn:") {
		return apperr.Genericf("aws_role_arn %q is not an ARN", arn)
	}
	return nil
}
