package jobs

import (
	"github.com/gofiber/fiber/v2"

	"garage-backend/internal/auth"
	"garage-backend/internal/models"
	"garage-backend/internal/service"
)

type CreateJobCardRequest struct {
	Customer struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"customer"`
	Vehicle struct {
		RegistrationNo string `json:"registration_no"`
		Make           string `json:"make"`
		Model          string `json:"model"`
		VehicleType    string `json:"vehicle_type"`
	} `json:"vehicle"`
	AssignedMechanicID *uint    `json:"assigned_mechanic_id"`
	Tasks              []string `json:"tasks"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdateTaskRequest struct {
	Completed *bool   `json:"completed"`
	Notes     *string `json:"notes"`
}

func paramID(c *fiber.Ctx, what string) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+what+" id")
	}
	return uint(id), nil
}

// GET /api/jobcards?status=
func ListJobCardsHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobs, err := svc.ListJobCards(c.UserContext(), c.Query("status"))
		if err != nil {
			return err
		}
		return c.JSON(toJobList(jobs))
	}
}

// GET /api/my-jobs
func MyJobsHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobs, err := svc.MyJobs(c.UserContext(), auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(toJobList(jobs))
	}
}

// GET /api/jobcards/:id
func GetJobCardHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "job card")
		if err != nil {
			return err
		}
		job, err := svc.JobCard(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(ToJobCardResponse(job))
	}
}

// POST /api/jobcards (admin)
func CreateJobCardHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateJobCardRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		job, err := svc.CreateJobCard(c.UserContext(), auth.ActorFrom(c), service.NewJobCard{
			Customer: service.NewCustomer{
				Name:  body.Customer.Name,
				Phone: body.Customer.Phone,
				Email: body.Customer.Email,
			},
			Vehicle: service.NewVehicle{
				RegistrationNo: body.Vehicle.RegistrationNo,
				Make:           body.Vehicle.Make,
				Model:          body.Vehicle.Model,
				VehicleType:    models.VehicleType(body.Vehicle.VehicleType),
			},
			MechanicID: body.AssignedMechanicID,
			Tasks:      body.Tasks,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToJobCardResponse(job))
	}
}

// PATCH /api/jobcards/:id/update-status
func UpdateStatusHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "job card")
		if err != nil {
			return err
		}
		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		job, err := svc.Transition(c.UserContext(), auth.ActorFrom(c), id, body.Status)
		if err != nil {
			return err
		}
		return c.JSON(ToJobCardResponse(job))
	}
}

// PATCH /api/tasks/:id/update
// An empty body toggles the task.
func UpdateTaskHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "task")
		if err != nil {
			return err
		}
		var body UpdateTaskRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}

		task, err := svc.UpdateTask(c.UserContext(), auth.ActorFrom(c), id, service.TaskUpdate{
			Completed: body.Completed,
			Notes:     body.Notes,
		})
		if err != nil {
			return err
		}
		return c.JSON(ToTaskResponse(task))
	}
}

// GET /api/vehicles/find?registration_no=
func FindVehicleHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.FindVehicle(c.UserContext(), c.Query("registration_no"))
		if err != nil {
			return err
		}
		return c.JSON(ToVehicleResponse(v, true))
	}
}
