// ===============================
// FILE: internal/router/api_v1_integration.go
// ===============================

package router

import (
	"net/http"

	"doclib/internal/handlers/api/v1/auth"
	"doclib/internal/handlers/api/v1/categories"
	"doclib/internal/handlers/api/v1/comments"
	"doclib/internal/handlers/api/v1/documents"
	"doclib/internal/handlers/api/v1/favorites"
	"doclib/internal/handlers/api/v1/notifications"
	"doclib/internal/handlers/api/v1/ratings"
	"doclib/internal/handlers/api/v1/users"
	"doclib/internal/models"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

// id segments are numeric so they never shadow literal siblings
const idPattern = "{id:[0-9]+}"

// AddAPIv1Routes registers the /api/v1 surface on api
func AddAPIv1Routes(api *mux.Router, deps *Dependencies) {
	sc := deps.Services
	am := deps.AuthMiddleware
	rb := deps.ResponseBuilder
	logger := deps.Logger

	authController := auth.NewAuthController(sc.Auth, logger, rb, deps.Config.IsProduction())
	categoryController := categories.NewCategoryController(sc.Categories, logger, rb)
	documentController := documents.NewDocumentController(sc.Documents, sc.Listing, sc.History, logger, rb)
	favoriteController := favorites.NewFavoriteController(sc.Favorites, logger, rb)
	ratingController := ratings.NewRatingController(sc.Ratings, logger, rb)
	commentController := comments.NewCommentController(sc.Comments, logger, rb)
	notificationController := notifications.NewNotificationController(sc.Notifications, logger, rb)
	historyController := users.NewHistoryController(sc.History, logger, rb)

	authed := func(h http.HandlerFunc) http.Handler { return am.RequireAuth()(h) }
	optional := func(h http.HandlerFunc) http.Handler { return am.OptionalAuth()(h) }
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return am.RequireAuth()(am.RequireRole(models.RoleAdmin)(h))
	}

	// Downloads stream blobs of arbitrary size and stay outside the
	// request timeout.
	api.Handle("/documents/"+idPattern+"/download", optional(documentController.DownloadDocument)).Methods(http.MethodGet)

	v1 := api.NewRoute().Subrouter()
	if timeout := deps.Config.Server.RequestTimeout; timeout > 0 {
		v1.Use(chimw.Timeout(timeout))
	}

	// ===============================
	// AUTH
	// ===============================

	credentials := func(h http.HandlerFunc) http.Handler {
		if deps.AuthLimiter == nil {
			return h
		}
		return deps.AuthLimiter.Middleware()(h)
	}
	v1.Handle("/auth/register", credentials(authController.Register)).Methods(http.MethodPost)
	v1.Handle("/auth/login", credentials(authController.Login)).Methods(http.MethodPost)
	v1.Handle("/auth/me", authed(authController.Me)).Methods(http.MethodGet)
	v1.HandleFunc("/auth/google/login", authController.GoogleLogin).Methods(http.MethodGet)
	v1.HandleFunc("/auth/google/callback", authController.GoogleCallback).Methods(http.MethodGet)

	// ===============================
	// CATEGORIES
	// ===============================

	v1.HandleFunc("/categories", categoryController.ListCategories).Methods(http.MethodGet)
	v1.Handle("/categories", adminOnly(categoryController.CreateCategory)).Methods(http.MethodPost)
	v1.Handle("/categories/"+idPattern, adminOnly(categoryController.UpdateCategory)).Methods(http.MethodPut)
	v1.Handle("/categories/"+idPattern, adminOnly(categoryController.DeleteCategory)).Methods(http.MethodDelete)
	v1.HandleFunc("/categories/{slug}", categoryController.GetCategory).Methods(http.MethodGet)

	// ===============================
	// DOCUMENTS
	// ===============================

	// Literal segments first so they are not read as a slug.
	v1.HandleFunc("/documents/featured", documentController.ListFeatured).Methods(http.MethodGet)
	v1.Handle("/documents/mine", authed(documentController.ListMine)).Methods(http.MethodGet)
	v1.Handle("/documents", optional(documentController.ListDocuments)).Methods(http.MethodGet)
	v1.Handle("/documents", authed(documentController.UploadDocument)).Methods(http.MethodPost)
	v1.Handle("/documents/"+idPattern, authed(documentController.UpdateDocument)).Methods(http.MethodPut)
	v1.Handle("/documents/"+idPattern, authed(documentController.DeleteDocument)).Methods(http.MethodDelete)
	v1.Handle("/documents/{idOrSlug}", optional(documentController.GetDocument)).Methods(http.MethodGet)

	// Favorites
	v1.Handle("/documents/"+idPattern+"/favorite", authed(favoriteController.ToggleFavorite)).Methods(http.MethodPost)
	v1.Handle("/me/favorites", authed(favoriteController.ListFavorites)).Methods(http.MethodGet)

	// Ratings
	v1.Handle("/documents/"+idPattern+"/rating", authed(ratingController.RateDocument)).Methods(http.MethodPut)
	v1.Handle("/documents/"+idPattern+"/rating", authed(ratingController.DeleteRating)).Methods(http.MethodDelete)
	v1.Handle("/documents/"+idPattern+"/rating", authed(ratingController.GetMyRating)).Methods(http.MethodGet)
	v1.HandleFunc("/documents/"+idPattern+"/ratings", ratingController.ListRatings).Methods(http.MethodGet)
	v1.HandleFunc("/documents/"+idPattern+"/ratings/distribution", ratingController.GetDistribution).Methods(http.MethodGet)

	// Comments
	v1.HandleFunc("/documents/"+idPattern+"/comments", commentController.ListComments).Methods(http.MethodGet)
	v1.Handle("/documents/"+idPattern+"/comments", authed(commentController.CreateComment)).Methods(http.MethodPost)
	v1.Handle("/comments/"+idPattern, authed(commentController.UpdateComment)).Methods(http.MethodPut)
	v1.Handle("/comments/"+idPattern, authed(commentController.DeleteComment)).Methods(http.MethodDelete)
	v1.Handle("/comments/"+idPattern+"/report", authed(commentController.ReportComment)).Methods(http.MethodPost)

	// ===============================
	// ADMIN
	// ===============================

	admin := v1.PathPrefix("/admin").Subrouter()
	admin.Use(am.RequireAuth(), am.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/documents", documentController.ListAdmin).Methods(http.MethodGet)
	admin.HandleFunc("/documents/"+idPattern+"/approve", documentController.ApproveDocument).Methods(http.MethodPost)
	admin.HandleFunc("/documents/"+idPattern+"/reject", documentController.RejectDocument).Methods(http.MethodPost)
	admin.HandleFunc("/documents/"+idPattern+"/feature", documentController.FeatureDocument).Methods(http.MethodPost)
	admin.HandleFunc("/documents/"+idPattern+"/feature", documentController.UnfeatureDocument).Methods(http.MethodDelete)

	// ===============================
	// NOTIFICATIONS
	// ===============================

	v1.Handle("/notifications", authed(notificationController.ListNotifications)).Methods(http.MethodGet)
	v1.Handle("/notifications", authed(notificationController.DeleteAll)).Methods(http.MethodDelete)
	v1.Handle("/notifications/unread-count", authed(notificationController.UnreadCount)).Methods(http.MethodGet)
	v1.Handle("/notifications/read-all", authed(notificationController.MarkAllRead)).Methods(http.MethodPost)
	v1.Handle("/notifications/"+idPattern+"/read", authed(notificationController.MarkRead)).Methods(http.MethodPost)
	v1.Handle("/notifications/"+idPattern+"/unread", authed(notificationController.MarkUnread)).Methods(http.MethodPost)
	v1.Handle("/notifications/"+idPattern, authed(notificationController.DeleteNotification)).Methods(http.MethodDelete)

	// History
	v1.Handle("/me/views", authed(historyController.ListViews)).Methods(http.MethodGet)
	v1.Handle("/me/downloads", authed(historyController.ListDownloads)).Methods(http.MethodGet)
}
