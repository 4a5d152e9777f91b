package docs

// ListDocuments godoc
// @Summary List approved public documents
// @Tags Documents
// @Produce json
// @Param category query string false "Category slug"
// @Param uploader query int false "Uploader id"
// @Param format query string false "File extension, e.g. pdf"
// @Param search query string false "Case-insensitive match on title, description and tags"
// @Param dateField query string false "createdAt or updatedAt"
// @Param startDate query string false "RFC 3339 or YYYY-MM-DD"
// @Param endDate query string false "RFC 3339 or YYYY-MM-DD"
// @Param sortBy query string false "createdAt, viewCount, downloadCount, favoriteCount or averageRating"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size, default 10, max 100"
// @Success 200 {object} PaginatedResponse
// @Failure 400 {object} ErrorResponse
// @Router /documents [get]
func _() {}

// ListFeatured godoc
// @Summary List featured documents
// @Tags Documents
// @Produce json
// @Success 200 {object} PaginatedResponse
// @Router /documents/featured [get]
func _() {}

// ListMine godoc
// @Summary List the caller's uploads in any status
// @Security BearerAuth
// @Tags Documents
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} PaginatedResponse
// @Failure 401 {object} ErrorResponse
// @Router /documents/mine [get]
func _() {}

// GetDocument godoc
// @Summary Get a document by id or slug
// @Description Records a view. Unapproved documents are visible to their owner and admins only.
// @Tags Documents
// @Produce json
// @Param idOrSlug path string true "Numeric id or slug"
// @Success 200 {object} APIResponse
// @Failure 404 {object} ErrorResponse
// @Router /documents/{idOrSlug} [get]
func _() {}

// UploadDocument godoc
// @Summary Upload a document
// @Description New uploads start pending; admins are notified through moderation.
// @Security BearerAuth
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param tags formData string false "Comma-separated tags"
// @Param categoryId formData int false "Category id"
// @Param file formData file true "Document file"
// @Param thumbnail formData file false "Thumbnail image"
// @Success 201 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse "File type not allowed"
// @Router /documents [post]
func _() {}

// UpdateDocument godoc
// @Summary Update a document's metadata
// @Security BearerAuth
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "Document id"
// @Success 200 {object} APIResponse
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Router /documents/{id} [put]
func _() {}

// DeleteDocument godoc
// @Summary Delete a document and its engagement
// @Security BearerAuth
// @Tags Documents
// @Param id path int true "Document id"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /documents/{id} [delete]
func _() {}

// DownloadDocument godoc
// @Summary Download a document
// @Description Streams local blobs and redirects to remote ones. Records a download.
// @Tags Documents
// @Param id path int true "Document id"
// @Success 200 {file} file
// @Success 302 "Redirect to the blob"
// @Failure 404 {object} ErrorResponse
// @Router /documents/{id}/download [get]
func _() {}

// ApproveDocument godoc
// @Summary Approve a pending document
// @Security BearerAuth
// @Tags Admin
// @Param id path int true "Document id"
// @Success 200 {object} APIResponse
// @Failure 409 {object} ErrorResponse "Already approved or rejected"
// @Router /admin/documents/{id}/approve [post]
func _() {}

// RejectDocument godoc
// @Summary Reject a pending document
// @Security BearerAuth
// @Tags Admin
// @Param id path int true "Document id"
// @Success 200 {object} APIResponse
// @Failure 409 {object} ErrorResponse "Already approved or rejected"
// @Router /admin/documents/{id}/reject [post]
func _() {}

// ToggleFavorite godoc
// @Summary Add or remove a favorite
// @Security BearerAuth
// @Tags Engagement
// @Param id path int true "Document id"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse "Favorite limit reached"
// @Router /documents/{id}/favorite [post]
func _() {}

// RateDocument godoc
// @Summary Rate a document from 1 to 5
// @Description Creating answers 201, replacing answers 200.
// @Security BearerAuth
// @Tags Engagement
// @Accept json
// @Param id path int true "Document id"
// @Success 201 {object} APIResponse
// @Success 200 {object} APIResponse
// @Router /documents/{id}/rating [put]
func _() {}

// GetDistribution godoc
// @Summary Star distribution of a document's ratings
// @Tags Engagement
// @Param id path int true "Document id"
// @Success 200 {object} APIResponse
// @Router /documents/{id}/ratings/distribution [get]
func _() {}

// ListComments godoc
// @Summary List top-level comments with their replies
// @Tags Engagement
// @Param id path int true "Document id"
// @Param sort query string false "asc or desc"
// @Success 200 {object} PaginatedResponse
// @Router /documents/{id}/comments [get]
func _() {}

// CreateComment godoc
// @Summary Comment or reply one level deep
// @Security BearerAuth
// @Tags Engagement
// @Accept json
// @Param id path int true "Document id"
// @Success 201 {object} APIResponse
// @Failure 400 {object} ErrorResponse "Reply to a reply"
// @Router /documents/{id}/comments [post]
func _() {}

// ReportComment godoc
// @Summary Report a comment
// @Security BearerAuth
// @Tags Engagement
// @Param id path int true "Comment id"
// @Success 200 {object} MessageResponse
// @Failure 409 {object} ErrorResponse "Already reported"
// @Router /comments/{id}/report [post]
func _() {}

// ListNotifications godoc
// @Summary List the caller's notifications
// @Security BearerAuth
// @Tags Notifications
// @Param unreadOnly query bool false "Only unread"
// @Success 200 {object} PaginatedResponse
// @Router /notifications [get]
func _() {}

// UnreadCount godoc
// @Summary Count unread notifications
// @Security BearerAuth
// @Tags Notifications
// @Success 200 {object} CountResponse
// @Router /notifications/unread-count [get]
func _() {}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Security BearerAuth
// @Tags Notifications
// @Success 200 {object} CountResponse
// @Router /notifications/read-all [post]
func _() {}
