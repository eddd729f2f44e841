package service

import (
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// MatchesNotification reports whether the notification is addressed to the student.
func MatchesNotification(n models.Notification, s models.Student) bool {
	switch n.Target {
	case models.NotificationTargetAll:
		return true
	case models.NotificationTargetBranch:
		return n.Branch != nil && strings.TrimSpace(s.Branch) != "" &&
			strings.EqualFold(strings.TrimSpace(*n.Branch), strings.TrimSpace(s.Branch))
	case models.NotificationTargetYear:
		return n.Year != nil && strings.TrimSpace(s.Year) != "" &&
			strings.TrimSpace(*n.Year) == strings.TrimSpace(s.Year)
	case models.NotificationTargetSpecific:
		for _, id := range n.SpecificStudents {
			if id == s.ID {
				return true
			}
		}
	}
	return false
}

// NotificationFilterFor builds the SQL predicate equivalent to MatchesNotification for the student.
func NotificationFilterFor(s models.Student) squirrel.Sqlizer {
	rules := squirrel.Or{squirrel.Eq{"target": string(models.NotificationTargetAll)}}
	if branch := strings.TrimSpace(s.Branch); branch != "" {
		rules = append(rules, squirrel.And{
			squirrel.Eq{"target": string(models.NotificationTargetBranch)},
			squirrel.Expr("LOWER(TRIM(branch)) = LOWER(?)", branch),
		})
	}
	if year := strings.TrimSpace(s.Year); year != "" {
		rules = append(rules, squirrel.And{
			squirrel.Eq{"target": string(models.NotificationTargetYear)},
			squirrel.Expr("TRIM(year) = ?", year),
		})
	}
	rules = append(rules, squirrel.And{
		squirrel.Eq{"target": string(models.NotificationTargetSpecific)},
		squirrel.Expr("? = ANY(specific_students)", s.ID),
	})
	return rules
}

// publicNotificationFilter limits anonymous viewers to broadcasts addressed to everyone.
func publicNotificationFilter() squirrel.Sqlizer {
	return squirrel.Eq{"target": string(models.NotificationTargetAll)}
}
