package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type chatApi struct {
	svc       *chat.Service
	courseSvc *course.Service
	userSvc   user.Service
	validate  *validator.Validate
	hub       *hub
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps, h *hub) {
	api := chatApi{
		svc:       deps.ChatSvc,
		courseSvc: deps.CourseSvc,
		userSvc:   deps.UserSvc,
		validate:  deps.Validate,
		hub:       h,
	}

	cg := g.Group("/chat")
	ag := cg.Group("", jwt)
	ag.POST("/rooms", api.createRoom)
	ag.GET("/rooms/:courseID", api.queryRooms)
	ag.GET("/messages/:roomID", api.queryMessages)
	ag.POST("/messages/:roomID", api.postMessage)
	ag.PUT("/messages/pin/:id", api.pinMessage)

	// the browser websocket API cannot set an Authorization header;
	// the token is passed as a query param and verified in serveWs.
	cg.GET("/ws/:roomID", api.serveWs(deps))
}

// Handlers

func (api *chatApi) createRoom(ctx echo.Context) error {
	var data NewRoomRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoomRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	crs, ctxUsr, err := api.getCourse(ctx, data.CourseID)
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	nr := chat.NewRoom{Name: data.Name}
	if err := nr.Validate(api.validate); err != nil {
		return err
	}

	room, err := api.svc.CreateRoom(ctx.Request().Context(), crs.ID, ctxUsr, nr)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, room)
}

func (api *chatApi) queryRooms(ctx echo.Context) error {
	crs, _, err := api.getCourse(ctx, ctx.Param("courseID"))
	if err != nil {
		return err
	}

	rooms, err := api.svc.QueryRooms(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	if rooms == nil {
		rooms = []chat.Room{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

// queryMessages returns the room's history, newest first. `?limit=` caps
// the page size; it never exceeds chat.DefaultMessageLimit.
func (api *chatApi) queryMessages(ctx echo.Context) error {
	room, _, _, err := api.getRoom(ctx, ctx.Param("roomID"))
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	msgs, err := api.svc.QueryMessages(ctx.Request().Context(), room.ID, limit)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

// postMessage is the HTTP fallback for clients without a websocket;
// the stored message is also fanned out to connected room members.
func (api *chatApi) postMessage(ctx echo.Context) error {
	room, _, ctxUsr, err := api.getRoom(ctx, ctx.Param("roomID"))
	if err != nil {
		return err
	}

	var data chat.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	msg, err := api.svc.Post(ctx.Request().Context(), room, ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "posting message")
	}
	api.hub.broadcastMessage(msg)
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *chatApi) pinMessage(ctx echo.Context) error {
	msg, err := api.svc.GetMessage(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == chat.ErrMessageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding message by ID")
	}

	room, err := api.svc.GetRoom(ctx.Request().Context(), msg.RoomID)
	if err != nil {
		return errors.Wrap(err, "finding room by ID")
	}
	crs, ctxUsr, err := api.getCourse(ctx, room.CourseID)
	if err != nil {
		return err
	}
	if !crs.CanEdit(ctxUsr) {
		return errHttpForbidden
	}

	msg, err = api.svc.Pin(ctx.Request().Context(), msg.ID, !msg.IsPinned)
	if err != nil {
		return errors.Wrap(err, "pinning message")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *chatApi) getCourse(ctx echo.Context, id string) (course.Course, user.User, error) {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return course.Course{}, user.User{}, errors.Wrap(err, "getting context user")
	}

	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, user.User{}, errHttpNotFound
		}
		return course.Course{}, user.User{}, errors.Wrap(err, "finding course by ID")
	}
	if !crs.CanView(ctxUsr) {
		return course.Course{}, user.User{}, errHttpNotFound
	}
	return crs, ctxUsr, nil
}

func (api *chatApi) getRoom(ctx echo.Context, id string) (chat.Room, course.Course, user.User, error) {
	room, err := api.svc.GetRoom(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == chat.ErrRoomNotFound {
			return chat.Room{}, course.Course{}, user.User{}, errHttpNotFound
		}
		return chat.Room{}, course.Course{}, user.User{}, errors.Wrap(err, "finding room by ID")
	}

	crs, ctxUsr, err := api.getCourse(ctx, room.CourseID)
	if err != nil {
		return chat.Room{}, course.Course{}, user.User{}, err
	}
	return room, crs, ctxUsr, nil
}

type NewRoomRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
}
