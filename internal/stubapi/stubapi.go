// Package stubapi is an in-memory stand-in for the storefront backend, used
// by package tests and the demo CLI. It implements the documented REST
// contract - envelope responses, cookie sessions, server-side default-address
// exclusivity - without any persistence.
package stubapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/velora-shop/storefront-go/internal/core/domain"
)

// SessionCookie is the name of the session cookie the stub issues.
const SessionCookie = "storefront_session"

type account struct {
	user         domain.UserProfile
	passwordHash []byte
	addresses    []domain.Address
	settings     domain.Settings
	cart         []domain.CartItem
	wishlist     []domain.WishlistItem
	inbox        []domain.StoreNotification
}

// Stub holds the in-memory backend state behind a gin router.
type Stub struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[int64]*account
	sessions map[string]int64
	products []domain.Product
	nextID   int64

	engine *gin.Engine
}

// New creates a stub backend seeded with a small catalog.
func New() *Stub {
	gin.SetMode(gin.TestMode)

	s := &Stub{
		byEmail:  make(map[string]*account),
		byID:     make(map[int64]*account),
		sessions: make(map[string]int64),
		products: seedProducts(),
		nextID:   1,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/auth/register", s.register)
	r.POST("/auth/login", s.login)
	r.POST("/auth/logout", s.logout)
	r.GET("/auth/me", s.requireAuth, s.me)

	api := r.Group("/api")
	{
		api.GET("/products", s.listProducts)
		api.GET("/products/:id", s.getProduct)

		authed := api.Group("", s.requireAuth)
		{
			authed.GET("/profile", s.getProfile)
			authed.PUT("/profile", s.updateProfile)
			authed.PATCH("/profile/avatar", s.updateAvatar)
			authed.GET("/profile/addresses", s.listAddresses)
			authed.POST("/profile/addresses", s.addAddress)
			authed.GET("/profile/addresses/:id", s.getAddress)
			authed.PUT("/profile/addresses/:id", s.updateAddress)
			authed.DELETE("/profile/addresses/:id", s.deleteAddress)
			authed.PATCH("/profile/addresses/:id/default", s.setDefaultAddress)
			authed.GET("/profile/settings", s.getSettings)
			authed.PUT("/profile/settings", s.updateSettings)

			authed.GET("/cart", s.getCart)
			authed.POST("/cart", s.addCartItem)
			authed.DELETE("/cart", s.clearCart)
			authed.PUT("/cart/items/:id", s.updateCartItem)
			authed.DELETE("/cart/items/:id", s.removeCartItem)

			authed.GET("/wishlist", s.listWishlist)
			authed.POST("/wishlist", s.addWishlist)
			authed.DELETE("/wishlist/:id", s.removeWishlist)

			authed.GET("/notifications", s.listNotifications)
			authed.PATCH("/notifications/:id/read", s.markNotificationRead)
			authed.PATCH("/notifications/read-all", s.markAllNotificationsRead)
		}
	}

	s.engine = r
	return s
}

// Router exposes the stub as an http.Handler for httptest or a local server.
func (s *Stub) Router() http.Handler {
	return s.engine
}

// Envelope helpers

func ok(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// Auth

func (s *Stub) requireAuth(c *gin.Context) {
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Authentication required")
		c.Abort()
		return
	}

	s.mu.Lock()
	userID, found := s.sessions[token]
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusUnauthorized, "Invalid or expired session")
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Next()
}

func (s *Stub) openSession(c *gin.Context, userID int64) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = userID
	s.mu.Unlock()
	c.SetCookie(SessionCookie, token, 0, "/", "", false, true)
}

func (s *Stub) register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.byEmail[req.Email]; exists {
		s.mu.Unlock()
		fail(c, http.StatusBadRequest, "Email already exists")
		return
	}

	// MinCost keeps test suites fast; the stub guards nothing real.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		s.mu.Unlock()
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	role := req.Role
	if role == "" {
		role = domain.RoleBuyer
	}
	id := s.nextID
	s.nextID++
	acct := &account{
		user: domain.UserProfile{
			SessionUser: domain.SessionUser{
				ID:        id,
				Email:     req.Email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Role:      role,
				CreatedAt: time.Now().UTC(),
			},
		},
		passwordHash: hash,
		settings:     domain.DefaultSettings(),
		inbox: []domain.StoreNotification{{
			ID:        1,
			Title:     "Welcome",
			Body:      "Thanks for joining the store",
			CreatedAt: time.Now().UTC(),
		}},
	}
	s.byEmail[req.Email] = acct
	s.byID[id] = acct
	user := acct.user.SessionUser
	s.mu.Unlock()

	s.openSession(c, id)
	ok(c, http.StatusCreated, "Account created", gin.H{"user": user})
}

func (s *Stub) login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	acct, found := s.byEmail[req.Email]
	s.mu.Unlock()
	if !found || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.openSession(c, acct.user.ID)
	ok(c, http.StatusOK, "Login successful", gin.H{"user": acct.user.SessionUser})
}

func (s *Stub) logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	ok(c, http.StatusOK, "Logged out", nil)
}

func (s *Stub) me(c *gin.Context) {
	acct := s.account(c)
	ok(c, http.StatusOK, "OK", acct.user.SessionUser)
}

// Profile

func (s *Stub) account(c *gin.Context) *account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[c.GetInt64("user_id")]
}

func (s *Stub) getProfile(c *gin.Context) {
	acct := s.account(c)
	s.mu.Lock()
	resp := gin.H{
		"user":      acct.user,
		"addresses": append([]domain.Address{}, acct.addresses...),
		"settings":  acct.settings,
	}
	s.mu.Unlock()
	ok(c, http.StatusOK, "OK", resp)
}

func (s *Stub) updateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	if req.FirstName != nil {
		acct.user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		acct.user.LastName = *req.LastName
	}
	if req.Phone != nil {
		acct.user.Phone = req.Phone
	}
	if req.DateOfBirth != nil {
		acct.user.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		acct.user.Gender = req.Gender
	}
	if req.Bio != nil {
		acct.user.Bio = req.Bio
	}
	user := acct.user
	s.mu.Unlock()

	ok(c, http.StatusOK, "Profile updated", user)
}

func (s *Stub) updateAvatar(c *gin.Context) {
	var req struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AvatarURL == "" {
		fail(c, http.StatusBadRequest, "avatar_url is required")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	acct.user.AvatarURL = &req.AvatarURL
	user := acct.user
	s.mu.Unlock()

	ok(c, http.StatusOK, "Avatar updated", user)
}

// Addresses

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

func (s *Stub) listAddresses(c *gin.Context) {
	acct := s.account(c)
	s.mu.Lock()
	addrs := append([]domain.Address{}, acct.addresses...)
	s.mu.Unlock()
	ok(c, http.StatusOK, "OK", addrs)
}

func (s *Stub) addAddress(c *gin.Context) {
	var input domain.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if input.Line1 == "" {
		fail(c, http.StatusBadRequest, "Address line 1 is required")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	now := time.Now().UTC()
	addr := domain.Address{
		ID:            id,
		Label:         input.Label,
		RecipientName: input.RecipientName,
		Phone:         input.Phone,
		Line1:         input.Line1,
		Line2:         input.Line2,
		City:          input.City,
		State:         input.State,
		Country:       input.Country,
		PostalCode:    input.PostalCode,
		IsDefault:     input.IsDefault || len(acct.addresses) == 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if addr.IsDefault {
		for i := range acct.addresses {
			acct.addresses[i].IsDefault = false
		}
	}
	acct.addresses = append(acct.addresses, addr)
	s.mu.Unlock()

	ok(c, http.StatusCreated, "Address added", addr)
}

func (s *Stub) getAddress(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid address id")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, addr := range acct.addresses {
		if addr.ID == id {
			ok(c, http.StatusOK, "OK", addr)
			return
		}
	}
	fail(c, http.StatusNotFound, "Address not found")
}

func (s *Stub) updateAddress(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid address id")
		return
	}
	var input domain.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	for i := range acct.addresses {
		if acct.addresses[i].ID != id {
			continue
		}
		addr := &acct.addresses[i]
		addr.Label = input.Label
		addr.RecipientName = input.RecipientName
		addr.Phone = input.Phone
		addr.Line1 = input.Line1
		addr.Line2 = input.Line2
		addr.City = input.City
		addr.State = input.State
		addr.Country = input.Country
		addr.PostalCode = input.PostalCode
		addr.UpdatedAt = time.Now().UTC()
		updated := *addr
		s.mu.Unlock()
		ok(c, http.StatusOK, "Address updated", updated)
		return
	}
	s.mu.Unlock()
	fail(c, http.StatusNotFound, "Address not found")
}

func (s *Stub) deleteAddress(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid address id")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	for i := range acct.addresses {
		if acct.addresses[i].ID == id {
			acct.addresses = append(acct.addresses[:i], acct.addresses[i+1:]...)
			s.mu.Unlock()
			ok(c, http.StatusOK, "Address deleted", nil)
			return
		}
	}
	s.mu.Unlock()
	fail(c, http.StatusNotFound, "Address not found")
}

func (s *Stub) setDefaultAddress(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid address id")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	found := false
	for i := range acct.addresses {
		if acct.addresses[i].ID == id {
			found = true
		}
	}
	if !found {
		s.mu.Unlock()
		fail(c, http.StatusNotFound, "Address not found")
		return
	}
	// Exclusivity is enforced here, server-side: promoting one address
	// demotes every other.
	for i := range acct.addresses {
		acct.addresses[i].IsDefault = acct.addresses[i].ID == id
	}
	s.mu.Unlock()

	ok(c, http.StatusOK, "Default address updated", nil)
}

// Settings

func (s *Stub) getSettings(c *gin.Context) {
	acct := s.account(c)
	s.mu.Lock()
	settings := acct.settings
	s.mu.Unlock()
	ok(c, http.StatusOK, "OK", settings)
}

func (s *Stub) updateSettings(c *gin.Context) {
	var update domain.SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	update.Apply(&acct.settings)
	settings := acct.settings
	s.mu.Unlock()

	ok(c, http.StatusOK, "Settings updated", settings)
}

// Catalog

func (s *Stub) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	category := c.Query("category")
	search := strings.ToLower(c.Query("search"))

	var matched []domain.Product
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		matched = append(matched, p)
	}

	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	totalPages := (len(matched) + limit - 1) / limit
	ok(c, http.StatusOK, "OK", domain.ProductPage{
		Products: matched[start:end],
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: len(matched),
			TotalPages: totalPages,
		},
	})
}

func (s *Stub) getProduct(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid product id")
		return
	}
	for _, p := range s.products {
		if p.ID == id {
			ok(c, http.StatusOK, "OK", p)
			return
		}
	}
	fail(c, http.StatusNotFound, "Product not found")
}

// Cart

func (s *Stub) getCart(c *gin.Context) {
	acct := s.account(c)
	s.mu.Lock()
	cart := domain.Cart{Items: append([]domain.CartItem{}, acct.cart...)}
	for _, item := range cart.Items {
		cart.Subtotal += item.UnitPrice * float64(item.Quantity)
	}
	s.mu.Unlock()
	ok(c, http.StatusOK, "OK", cart)
}

func (s *Stub) addCartItem(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product *domain.Product
	for i := range s.products {
		if s.products[i].ID == req.ProductID {
			product = &s.products[i]
			break
		}
	}
	if product == nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	merged := false
	for i := range acct.cart {
		if acct.cart[i].ProductID == req.ProductID {
			acct.cart[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		id := s.nextID
		s.nextID++
		acct.cart = append(acct.cart, domain.CartItem{
			ID:        id,
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.EffectivePrice(),
			ImageURL:  product.ImageURL,
			Quantity:  req.Quantity,
		})
	}
	s.mu.Unlock()

	ok(c, http.StatusCreated, "Added to cart", nil)
}

func (s *Stub) updateCartItem(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid item id")
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
		fail(c, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	for i := range acct.cart {
		if acct.cart[i].ID == id {
			acct.cart[i].Quantity = req.Quantity
			s.mu.Unlock()
			ok(c, http.StatusOK, "Cart updated", nil)
			return
		}
	}
	s.mu.Unlock()
	fail(c, http.StatusNotFound, "Cart item not found")
}

func (s *Stub) removeCartItem(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid item id")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	for i := range acct.cart {
		if acct.cart[i].ID == id {
			acct.cart = append(acct.cart[:i], acct.cart[i+1:]...)
			s.mu.Unlock()
			ok(c, http.StatusOK, "Removed from cart", nil)
			return
		}
	}
	s.mu.Unlock()
	fail(c, http.StatusNotFound, "Cart item not found")
}

func (s *Stub) clearCart(c *gin.Context) {
	acct := s.account(c)
	s.mu.Lock()
	acct.cart = nil
	s.mu.Unlock()
	ok(c, http.StatusOK, "Cart cleared", nil)
}

// Wishlist

func (s *Stub) listWishlist(c *gin.Context) {
	acct := s.account(c)
	s.mu.Lock()
	items := append([]domain.WishlistItem{}, acct.wishlist...)
	s.mu.Unlock()
	ok(c, http.StatusOK, "OK", items)
}

func (s *Stub) addWishlist(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	var product *domain.Product
	for i := range s.products {
		if s.products[i].ID == req.ProductID {
			product = &s.products[i]
			break
		}
	}
	if product == nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	for _, item := range acct.wishlist {
		if item.ProductID == req.ProductID {
			s.mu.Unlock()
			fail(c, http.StatusBadRequest, "Product already on wishlist")
			return
		}
	}
	id := s.nextID
	s.nextID++
	acct.wishlist = append(acct.wishlist, domain.WishlistItem{
		ID:        id,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.EffectivePrice(),
		ImageURL:  product.ImageURL,
		AddedAt:   time.Now().UTC(),
	})
	s.mu.Unlock()

	ok(c, http.StatusCreated, "Added to wishlist", nil)
}

func (s *Stub) removeWishlist(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid item id")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	for i := range acct.wishlist {
		if acct.wishlist[i].ID == id {
			acct.wishlist = append(acct.wishlist[:i], acct.wishlist[i+1:]...)
			s.mu.Unlock()
			ok(c, http.StatusOK, "Removed from wishlist", nil)
			return
		}
	}
	s.mu.Unlock()
	fail(c, http.StatusNotFound, "Wishlist item not found")
}

// Notifications

func (s *Stub) listNotifications(c *gin.Context) {
	acct := s.account(c)
	s.mu.Lock()
	items := append([]domain.StoreNotification{}, acct.inbox...)
	s.mu.Unlock()
	ok(c, http.StatusOK, "OK", items)
}

func (s *Stub) markNotificationRead(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		fail(c, http.StatusBadRequest, "Invalid notification id")
		return
	}

	acct := s.account(c)
	s.mu.Lock()
	for i := range acct.inbox {
		if acct.inbox[i].ID == id {
			acct.inbox[i].Read = true
			s.mu.Unlock()
			ok(c, http.StatusOK, "Notification read", nil)
			return
		}
	}
	s.mu.Unlock()
	fail(c, http.StatusNotFound, "Notification not found")
}

func (s *Stub) markAllNotificationsRead(c *gin.Context) {
	acct := s.account(c)
	s.mu.Lock()
	for i := range acct.inbox {
		acct.inbox[i].Read = true
	}
	s.mu.Unlock()
	ok(c, http.StatusOK, "All notifications read", nil)
}

func seedProducts() []domain.Product {
	now := time.Now().UTC()
	return []domain.Product{
		{ID: 101, Name: "Wireless Headphones", Description: "Over-ear, noise cancelling", Price: 129.99, Category: "electronics", Stock: 42, Rating: 4.5, CreatedAt: now},
		{ID: 102, Name: "Mechanical Keyboard", Description: "Tenkeyless, hot-swappable", Price: 89.00, SalePrice: 69.00, OnSale: true, Category: "electronics", Stock: 17, Rating: 4.7, CreatedAt: now},
		{ID: 103, Name: "Ceramic Mug", Description: "350ml, dishwasher safe", Price: 14.50, Category: "home", Stock: 240, Rating: 4.2, CreatedAt: now},
		{ID: 104, Name: "Canvas Tote Bag", Description: "Organic cotton", Price: 24.00, Category: "accessories", Stock: 88, Rating: 4.0, CreatedAt: now},
		{ID: 105, Name: "Desk Lamp", Description: "Adjustable color temperature", Price: 45.90, Category: "home", Stock: 31, Rating: 4.4, CreatedAt: now},
	}
}
