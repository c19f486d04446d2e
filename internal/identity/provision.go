// Package identity assigns newly confirmed accounts to their group based on
// the signup type chosen at registration.
package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"github.com/example/marketplace-backend/internal/auth"
)

// GroupClient is the slice of the Cognito identity-provider API the
// provisioner needs.
type GroupClient interface {
	AdminAddUserToGroup(ctx context.Context, params *cognitoidentityprovider.AdminAddUserToGroupInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminAddUserToGroupOutput, error)
}

type Provisioner struct {
	client GroupClient
}

func NewProvisioner(client GroupClient) *Provisioner {
	return &Provisioner{client: client}
}

// AssignGroup adds a confirmed user to the group matching its signup type.
// Unknown signup types go to the plain user group. Callers must treat a
// failure as non-fatal: group assignment never blocks signup.
func (p *Provisioner) AssignGroup(ctx context.Context, userPoolID, username, signupType string) (string, error) {
	group := auth.RoleForSignupType(signupType)

	_, err := p.client.AdminAddUserToGroup(ctx, &cognitoidentityprovider.AdminAddUserToGroupInput{
		GroupName:  aws.String(group),
		UserPoolId: aws.String(userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return group, fmt.Errorf("failed to add user %s to group %s: %w", username, group, err)
	}
	return group, nil
}
