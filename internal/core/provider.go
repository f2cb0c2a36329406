package core

// ProviderKind 身分提供者類型，與前端既有的 providerId 命名一致
type ProviderKind string

const (
	ProviderPassword ProviderKind = "password"
	ProviderGoogle   ProviderKind = "google.com"
	ProviderFacebook ProviderKind = "facebook.com"
	ProviderGitHub   ProviderKind = "github.com"
	ProviderOIDC     ProviderKind = "oidc"
)

// ProviderKindFromAlias 將 Keycloak identity provider alias 對應到 ProviderKind
func ProviderKindFromAlias(alias string) ProviderKind {
	switch alias {
	case "":
		return ProviderPassword
	case "google":
		return ProviderGoogle
	case "facebook":
		return ProviderFacebook
	case "github":
		return ProviderGitHub
	default:
		return ProviderOIDC
	}
}
