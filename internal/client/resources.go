package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

type countResponse struct {
	Total int `json:"total"`
}

func (c *Client) rest1URL(path string) string {
	return c.cfg.EndpointURL(c.cfg.API.Rest1) + path
}

func (c *Client) rest2URL(path string) string {
	return c.cfg.EndpointURL(c.cfg.API.Rest2) + path
}

func (c *Client) getQuery(ctx context.Context, rawURL string, query url.Values, out any) error {
	body, err := c.execute(ctx, call{
		method:      "GET",
		url:         rawURL,
		query:       query,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// ResourceExists reports whether a resource with the given id exists.
func (c *Client) ResourceExists(ctx context.Context, id string, resourceType ResourceType) (bool, error) {
	c.logger.Debug("checking resource", "type", resourceType.Label(), "id", id)
	var count countResponse
	query := url.Values{"q": []string{"id==" + id}}
	if err := c.getQuery(ctx, c.rest2URL(resourceType.EntityID()), query, &count); err != nil {
		return false, err
	}
	return count.Total > 0, nil
}

// OneResourceExists reports whether at least one of the ids exists.
func (c *Client) OneResourceExists(ctx context.Context, ids []string, resourceType ResourceType) (bool, error) {
	c.logger.Debug("checking resources", "type", resourceType.Label(), "ids", strings.Join(ids, ","))
	var count countResponse
	query := url.Values{"q": []string{fmt.Sprintf("id=in=(%s)", strings.Join(ids, ","))}}
	if err := c.getQuery(ctx, c.rest2URL(resourceType.EntityID()), query, &count); err != nil {
		return false, err
	}
	return count.Total > 0, nil
}

// EnsureResourceExists fails with a NotFoundError when the resource is absent.
func (c *Client) EnsureResourceExists(ctx context.Context, id string, resourceType ResourceType) error {
	exists, err := c.ResourceExists(ctx, id, resourceType)
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{Label: resourceType.Label(), ID: id}
	}
	return nil
}

// UserExists reports whether a user with the exact username exists. Usernames
// are case-sensitive.
func (c *Client) UserExists(ctx context.Context, username string) (bool, error) {
	c.logger.Debug("checking user", "username", username)
	var count countResponse
	query := url.Values{"q": []string{"username==" + username}}
	if err := c.getQuery(ctx, c.rest2URL("sys_sec_User"), query, &count); err != nil {
		return false, err
	}
	return count.Total > 0, nil
}

// RoleExists reports whether a role exists. Role names follow an upper-case
// convention, so the lookup upper-cases the name first.
func (c *Client) RoleExists(ctx context.Context, rolename string) (bool, error) {
	c.logger.Debug("checking role", "rolename", rolename)
	var count countResponse
	query := url.Values{"q": []string{"name==" + strings.ToUpper(rolename)}}
	if err := c.getQuery(ctx, c.rest2URL("sys_sec_Role"), query, &count); err != nil {
		return false, err
	}
	return count.Total > 0, nil
}

// PrincipalExists dispatches to the user or role existence check.
func (c *Client) PrincipalExists(ctx context.Context, name string, principalType PrincipalType) (bool, error) {
	switch principalType {
	case PrincipalUser:
		return c.UserExists(ctx, name)
	case PrincipalRole:
		return c.RoleExists(ctx, name)
	default:
		return false, fmt.Errorf("unknown principal type: %s", principalType)
	}
}

// EnsurePrincipalExists fails with a NotFoundError when the principal is absent.
func (c *Client) EnsurePrincipalExists(ctx context.Context, name string, principalType PrincipalType) error {
	exists, err := c.PrincipalExists(ctx, name, principalType)
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{Label: string(principalType), ID: name}
	}
	return nil
}

// Grant gives a principal a permission on a resource through the permission
// manager plugin. The payload is validated before any network I/O happens.
func (c *Client) Grant(ctx context.Context, principalType PrincipalType, principalName string, resourceType ResourceType, id, permission string) error {
	form := url.Values{}
	form.Set("radio-"+id, permission)

	switch principalType {
	case PrincipalUser:
		form.Set("username", principalName)
	case PrincipalRole:
		form.Set("rolename", strings.ToUpper(principalName))
	default:
		return fmt.Errorf("unknown principal type: %s", principalType)
	}

	target := c.cfg.EndpointURL(c.cfg.API.Perm) + resourceType.Path() + "/" + string(principalType)
	return c.PostForm(ctx, target, form)
}

// Version returns the MOLGENIS version reported by the server.
func (c *Client) Version(ctx context.Context) (string, error) {
	var body struct {
		MolgenisVersion string `json:"molgenisVersion"`
	}
	if err := c.Get(ctx, c.rest2URL("version"), &body); err != nil {
		return "", err
	}
	return body.MolgenisVersion, nil
}

// ImportByURL triggers a server-side import of a file hosted at a remote
// location, passed as query parameters.
func (c *Client) ImportByURL(ctx context.Context, params url.Values) error {
	_, err := c.execute(ctx, call{
		method:      "POST",
		url:         c.cfg.EndpointURL(c.cfg.API.ImportURL),
		query:       params,
		contentType: "application/json",
	})
	return err
}

// ImportFile uploads a local file to the import wizard.
func (c *Client) ImportFile(ctx context.Context, filePath string, params url.Values) error {
	return c.PostFile(ctx, c.cfg.EndpointURL(c.cfg.API.Import), filePath, params)
}

// DeleteRows deletes specific rows of an entity type by id.
func (c *Client) DeleteRows(ctx context.Context, entityID string, ids []string) error {
	c.logger.Debug("deleting rows", "entity", entityID, "ids", strings.Join(ids, ","))
	return c.DeleteData(ctx, c.rest2URL(entityID), ids)
}

// DeleteAllRows removes all data of an entity type.
func (c *Client) DeleteAllRows(ctx context.Context, entityID string) error {
	c.logger.Debug("deleting all rows", "entity", entityID)
	return c.Delete(ctx, c.rest1URL(entityID))
}

type groupsResponse struct {
	Items []struct {
		Name string `json:"name"`
	} `json:"items"`
}

// Groups lists the names of all security groups.
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	c.logger.Debug("fetching groups")
	var body groupsResponse
	query := url.Values{"attrs": []string{"name"}}
	if err := c.getQuery(ctx, c.rest2URL("sys_sec_Group"), query, &body); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(body.Items))
	for _, item := range body.Items {
		names = append(names, item.Name)
	}
	return names, nil
}

// FindGroup resolves the group a role belongs to. Role names are prefixed with
// their group name, so the longest group name that prefixes the role wins.
func (c *Client) FindGroup(ctx context.Context, role string) (string, error) {
	groups, err := c.Groups(ctx)
	if err != nil {
		return "", err
	}
	kebab := lowerKebab(role)
	match := ""
	for _, group := range groups {
		if strings.HasPrefix(kebab, group) && len(group) > len(match) {
			match = group
		}
	}
	if match == "" {
		return "", &NotFoundError{Label: "group for role", ID: strings.ToUpper(role)}
	}
	return match, nil
}

// MakeMember makes a user a member of a role inside the role's group.
func (c *Client) MakeMember(ctx context.Context, username, role string) error {
	group, err := c.FindGroup(ctx, role)
	if err != nil {
		return err
	}
	c.logger.Info("adding member", "username", username, "role", strings.ToUpper(role))
	return c.Post(ctx, c.cfg.MemberURL(group), map[string]string{
		"username": username,
		"roleName": strings.ToUpper(role),
	}, nil)
}

// AddUser creates an active user with a throwaway password and e-mail address.
func (c *Client) AddUser(ctx context.Context, username string) error {
	c.logger.Info("adding user", "username", username)
	return c.Post(ctx, c.rest1URL("sys_sec_User"), map[string]any{
		"username":  username,
		"password_": username,
		"Email":     username + "@molgenis.org",
		"active":    true,
	}, nil)
}

// AddGroup creates a security group.
func (c *Client) AddGroup(ctx context.Context, name string) error {
	c.logger.Info("adding group", "name", name)
	return c.Post(ctx, c.cfg.EndpointURL(c.cfg.API.Group), map[string]string{
		"name":  name,
		"label": name,
	}, nil)
}

// lowerKebab turns "My Role_Name" into "my-role-name".
func lowerKebab(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	return s
}
