package handler

import (
	"github.com/blackhole/records-system/internal/core/domain"
)

const dateLayout = "2006-01-02"

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.RoleSet().Names(),
		CreatedAt: u.CreatedAt,
	}
}

func toRecordResponse(r domain.Record) recordResponse {
	return recordResponse{
		ID:          r.ID,
		Name:        r.Name,
		Age:         r.Age,
		DateOfBirth: r.DateOfBirth.UTC().Format(dateLayout),
		Description: r.Description,
		ConnectedTo: r.ConnectedTo,
		CreatedAt:   r.CreatedAt,
	}
}

func toRecordList(records []domain.Record) recordListResponse {
	out := recordListResponse{Count: len(records), Records: make([]recordResponse, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, toRecordResponse(r))
	}
	return out
}

func toRoleResponses(roles []domain.Role) []roleResponse {
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{ID: r.ID, Name: string(r.Name)})
	}
	return out
}
