package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Haleralex/storehub/internal/application/compensation"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/events"
)

// CreateUserUseCase - use case для создания нового пользователя.
//
// Сценарий:
// 1. Захэшировать пароль, сгенерировать activation link
// 2. Создать domain entity User (валидация внутри)
// 3. Проверить уникальность: {first_name + last_name}, {email}, {phone}
// 4. Сохранить пользователя
// 5. Сохранить аватар (если есть) и привязать его к пользователю
// 6. После commit: письмо активации и событие UserCreated
//
// Транзакция: шаги 3-5 выполняются в одной БД-транзакции.
// Файл аватара удаляется компенсацией, если транзакция откатилась.
type CreateUserUseCase struct {
	users          *Users
	hasher         ports.PasswordHasher
	mailer         ports.Mailer
	eventPublisher ports.EventPublisher
	activationURL  string
}

// NewCreateUserUseCase создаёт новый use case.
// activationURL - база ссылки активации, к ней добавляется "/<link>".
func NewCreateUserUseCase(
	users *Users,
	hasher ports.PasswordHasher,
	mailer ports.Mailer,
	eventPublisher ports.EventPublisher,
	activationURL string,
) *CreateUserUseCase {
	if mailer == nil {
		mailer = ports.NopMailer{}
	}
	return &CreateUserUseCase{
		users:          users,
		hasher:         hasher,
		mailer:         mailer,
		eventPublisher: eventPublisher,
		activationURL:  strings.TrimRight(activationURL, "/"),
	}
}

// Execute выполняет use case.
//
// Errors:
//   - ValidationError: невалидные данные
//   - DuplicateError: имя, email или телефон уже заняты
//   - InfrastructureError: проблемы с БД/storage
func (uc *CreateUserUseCase) Execute(ctx context.Context, cmd dtos.CreateUserCommand) (*dtos.UserDTO, error) {
	// 1. Hash + activation link
	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	link := uuid.NewString()

	// 2. Domain entity
	user, err := entities.NewUser(cmd.FirstName, cmd.LastName, cmd.Email, cmd.Phone, hash, link)
	if err != nil {
		return nil, err
	}
	user.Birthday = cmd.Birthday

	var (
		comp    compensation.List
		created *entities.User
	)
	err = compensation.Guard(ctx, &comp, uc.users.logger, func() error {
		return uc.users.uow.Execute(ctx, func(ctx context.Context, scope ports.Scope) error {
			// Повтор транзакции: убрать аватар прошлой попытки, ID получить заново
			comp.Run(ctx, uc.users.logger)
			fresh := *user
			user := &fresh

			// 3. Уникальность
			if err := uc.users.checker.CheckCreate(ctx, scope, user); err != nil {
				return err
			}

			// 4. Сохранение
			repo, err := uc.users.users(scope)
			if err != nil {
				return err
			}
			if err := repo.Insert(ctx, user); err != nil {
				return err
			}

			// 5. Аватар
			if cmd.Avatar != nil {
				avatar, err := uc.users.photos.Create(ctx, scope, &comp, *cmd.Avatar)
				if err != nil {
					return err
				}
				if err := uc.users.photos.Attach(ctx, scope, []int64{avatar.ID}, entities.FieldUserID, user.ID); err != nil {
					return err
				}
			}

			// 6. Побочные эффекты только после commit
			email, fullName, userID := user.Email, user.FirstName+" "+user.LastName, user.ID
			scope.AfterCommit(func(ctx context.Context) {
				if err := uc.mailer.SendActivationMail(ctx, email, uc.activationURL+"/"+link); err != nil {
					uc.users.logger.WarnContext(ctx, "failed to queue activation mail",
						"user_id", userID,
						"error", err,
					)
				}
				uc.users.publish(ctx, uc.eventPublisher, events.NewUserCreated(userID, email, fullName))
			})

			created, err = uc.users.load(ctx, scope, user.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	uc.users.logger.InfoContext(ctx, "user created", "user_id", created.ID)
	result := dtos.ToUserDTO(created)
	return &result, nil
}
