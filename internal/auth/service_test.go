package auth_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/payflowhq/payflow/internal/auth"
	userDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/user"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Module Suite")
}

type mockAuthRepository struct {
	users map[string]struct {
		hash   string
		userID int64
	}
	sessions map[int64]*auth.User
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		users: make(map[string]struct {
			hash   string
			userID int64
		}),
		sessions: make(map[int64]*auth.User),
	}
}

func (m *mockAuthRepository) addUser(email, password string, user *auth.User) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m.users[email] = struct {
		hash   string
		userID int64
	}{hash: string(hash), userID: user.ID}
	m.sessions[user.ID] = user
}

func (m *mockAuthRepository) GetCredentialsByEmail(email string) (string, int64, error) {
	creds, ok := m.users[email]
	if !ok {
		return "", 0, errors.New("no rows")
	}
	return creds.hash, creds.userID, nil
}

func (m *mockAuthRepository) GetSessionUser(userID int64) (*auth.User, error) {
	u, ok := m.sessions[userID]
	if !ok {
		return nil, errors.New("no rows")
	}
	copied := *u
	return &copied, nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo    *mockAuthRepository
		service *auth.Service
	)

	BeforeEach(func() {
		repo = newMockAuthRepository()
		repo.addUser("ana@payflow.dev", "123456", &auth.User{
			ID:    1,
			Name:  "Ana Silva",
			Email: "ana@payflow.dev",
			Role:  userDatamodel.RoleRequester,
		})

		tokenGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokenGen)
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "ana@payflow.dev", Password: "123456"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("1"))
			Expect(claims.Email).To(Equal("ana@payflow.dev"))
		})

		It("rejects a wrong password with the generic credentials error", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "ana@payflow.dev", Password: "wrong"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email with the same error as a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "ghost@payflow.dev", Password: "123456"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects empty credentials before touching the repository", func() {
			_, err := service.Authenticate(auth.LoginDTO{})
			Expect(err).To(HaveOccurred())
			Expect(err).NotTo(MatchError(auth.ErrInvalidCredentials))
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "ana@payflow.dev", Password: "123456"})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("1"))
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-jwt")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("GetSessionUser", func() {
		It("attaches the capability set for the user's role", func() {
			u, err := service.GetSessionUser(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Permissions).To(ConsistOf(auth.PermCreateRequests, auth.PermConfirmSupplierData))
		})
	})
})

var _ = Describe("Role capabilities", func() {
	It("lets requesters create requests and confirm supplier data only", func() {
		caps := auth.CapabilitiesForRole(userDatamodel.RoleRequester)
		Expect(caps).To(ConsistOf(auth.PermCreateRequests, auth.PermConfirmSupplierData))
	})

	It("lets managers approve but never pay", func() {
		caps := auth.CapabilitiesForRole(userDatamodel.RoleManager)
		Expect(caps).To(ContainElements(auth.PermApproveRequests, auth.PermRejectRequests, auth.PermManageEvents, auth.PermManageUsers, auth.PermViewReports))
		Expect(caps).NotTo(ContainElement(auth.PermPayRequests))
	})

	It("lets finance pay but never approve or create", func() {
		caps := auth.CapabilitiesForRole(userDatamodel.RoleFinance)
		Expect(caps).To(ContainElements(auth.PermPayRequests, auth.PermRejectRequests, auth.PermViewReports))
		Expect(caps).NotTo(ContainElement(auth.PermApproveRequests))
		Expect(caps).NotTo(ContainElement(auth.PermCreateRequests))
	})

	It("grants nothing to unknown roles", func() {
		Expect(auth.CapabilitiesForRole("intern")).To(BeEmpty())
	})

	It("returns a copy callers cannot mutate", func() {
		caps := auth.CapabilitiesForRole(userDatamodel.RoleRequester)
		caps[0] = "tampered"
		Expect(auth.CapabilitiesForRole(userDatamodel.RoleRequester)).To(ContainElement(auth.PermCreateRequests))
	})
})
