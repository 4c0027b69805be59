package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/course-service/internal/api/dto"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/service"
	"github.com/spec-kit/course-service/internal/validation"
	apperrors "github.com/spec-kit/course-service/pkg/util"
)

// CoursesHandler manages catalog and enrollment endpoints.
type CoursesHandler struct {
	courses     *service.CourseService
	enrollments *service.EnrollmentService
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courseService *service.CourseService, enrollmentService *service.EnrollmentService) *CoursesHandler {
	return &CoursesHandler{courses: courseService, enrollments: enrollmentService}
}

// List handles GET /api/courses.
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search")

	result, err := h.courses.List(c.Context(), page, limit, search)
	if err != nil {
		return err
	}

	courses := make([]dto.CourseResponse, 0, len(result.Items))
	for _, item := range result.Items {
		courses = append(courses, dto.NewCourseResponse(item))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": dto.CourseListData{
			Courses:     courses,
			CurrentPage: result.CurrentPage,
			TotalPages:  result.TotalPages,
			Total:       result.Total,
		},
	})
}

// Get handles GET /api/courses/search/:courseId.
func (h *CoursesHandler) Get(c *fiber.Ctx) error {
	item, students, err := h.courses.Get(c.Context(), c.Params("courseId"))
	if err != nil {
		return err
	}

	course := dto.NewCourseResponse(*item)
	course.EnrolledStudents = students
	return c.JSON(course)
}

// Create handles POST /api/courses/create. Reached through the
// authentication and teacher-role gates.
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	course, err := h.courses.Create(c.Context(), claims.UserID, validation.CourseInput{
		Title:            req.Title,
		Description:      req.Description,
		Content:          contentInput(req.Content),
		EnrollmentStatus: req.EnrollmentStatus,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Course created successfully",
		"course": fiber.Map{
			"id":               course.ID,
			"title":            course.Title,
			"description":      course.Description,
			"enrollmentStatus": string(course.EnrollmentStatus),
			"creator":          course.CreatorID,
			"createdAt":        course.CreatedAt,
		},
	})
}

// Enroll handles POST /api/courses/enroll/:courseId.
func (h *CoursesHandler) Enroll(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	// Params strings are backed by fiber's reusable request buffer; copy
	// before handing the id to a store that outlives this handler.
	if err := h.enrollments.Enroll(c.Context(), utils.CopyString(c.Params("courseId")), claims.UserID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Successfully enrolled in the course",
	})
}

// EnrolledCourses handles GET /api/courses/enrolled.
func (h *CoursesHandler) EnrolledCourses(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ids, err := h.enrollments.EnrolledCourseIDs(c.Context(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"courseIds": ids},
	})
}

// Update handles PUT /api/courses/update/:id.
func (h *CoursesHandler) Update(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.CourseUpdateInput{
		Title:            req.Title,
		Description:      req.Description,
		EnrollmentStatus: req.EnrollmentStatus,
	}
	if req.Content != nil {
		patch.Content = contentInput(req.Content)
	}

	course, err := h.courses.Update(c.Context(), c.Params("id"), patch, claims.UserID)
	if err != nil {
		return err
	}

	blocks := make([]dto.ContentBlockResponse, 0, len(course.Content))
	for _, block := range course.Content {
		blocks = append(blocks, dto.ContentBlockResponse{Type: string(block.Type), Data: block.Data})
	}
	return c.JSON(fiber.Map{
		"id":               course.ID,
		"title":            course.Title,
		"description":      course.Description,
		"content":          blocks,
		"creator":          course.CreatorID,
		"enrollmentStatus": string(course.EnrollmentStatus),
		"createdAt":        course.CreatedAt,
		"updatedAt":        course.UpdatedAt,
	})
}

func contentInput(blocks []dto.ContentBlockRequest) []validation.ContentBlockInput {
	out := make([]validation.ContentBlockInput, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, validation.ContentBlockInput{Type: block.Type, Data: block.Data})
	}
	return out
}
