package model

import "books-commons/internal/shared/apperror"

var ErrNotificationNotFound = apperror.New(apperror.KindNotFound, "NOTIF001", "notification not found")
