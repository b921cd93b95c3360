package i18n

import "github.com/piezasya/loyalty/internal/constants"

var catalog = map[string]map[string]string{
	constants.LocaleEsES: {
		"error.bad_request":                "Parámetros de solicitud no válidos",
		"error.unauthorized":               "No autorizado",
		"error.forbidden":                  "Acceso denegado",
		"error.not_found":                  "Recurso no encontrado",
		"error.too_many_requests":          "Demasiadas solicitudes, inténtalo más tarde",
		"error.internal_error":             "Error interno del servidor",
		"error.token_invalid":              "Token no válido o caducado",
		"error.login_invalid":              "Usuario o contraseña incorrectos",
		"error.user_not_found":             "Usuario no encontrado",
		"error.user_disabled":              "La cuenta está deshabilitada",
		"error.admin_not_found":            "Administrador no encontrado",
		"error.role_not_found":             "Rol no encontrado",
		"error.role_invalid":               "Rol no válido",
		"error.points_invalid":             "La cantidad de puntos no es válida",
		"error.insufficient_points":        "Puntos insuficientes",
		"error.order_ref_required":         "La referencia del pedido es obligatoria",
		"error.purchase_amount_invalid":    "El importe de la compra no es válido",
		"error.reward_not_found":           "Recompensa no encontrada",
		"error.reward_inactive":            "La recompensa no está activa",
		"error.reward_out_of_stock":        "Recompensa agotada",
		"error.reward_not_started":         "La recompensa aún no está disponible",
		"error.reward_expired":             "La recompensa ha caducado",
		"error.reward_invalid":             "Datos de recompensa no válidos",
		"error.redemption_not_found":       "Canje no encontrado",
		"error.redemption_status_invalid":  "Cambio de estado del canje no permitido",
		"error.review_rating_invalid":      "La valoración debe estar entre 1 y 5",
		"error.review_comment_required":    "El comentario es obligatorio",
		"error.review_category_invalid":    "Categoría de reseña no válida",
		"error.review_not_found":           "Reseña no encontrada",
		"error.review_already_reported":    "Ya has denunciado esta reseña",
		"error.review_report_own":          "No puedes denunciar tu propia reseña",
		"error.review_reply_required":      "La respuesta es obligatoria",
		"error.referral_code_required":     "El código de referido es obligatorio",
		"error.referral_code_not_found":    "Código de referido no encontrado",
		"error.referral_code_exhausted":    "No se pudo generar un código de referido, inténtalo de nuevo",
		"error.referral_self":              "No puedes usar tu propio código de referido",
		"error.referral_already_referred":  "El usuario ya fue referido",
		"error.referral_already_processed": "Este referido ya fue procesado",
		"error.share_platform_invalid":     "Plataforma de compartición no válida",
		"error.captcha_required":           "Introduce el código de verificación",
		"error.captcha_invalid":            "Código de verificación incorrecto",
		"error.captcha_config_invalid":     "Configuración de verificación no válida",
		"error.settings_invalid":           "Configuración de fidelización no válida",
		"error.token_revoked":              "La sesión ha caducado, inicia sesión de nuevo",
		"error.rate_limited":               "Demasiadas solicitudes, vuelve a intentarlo en %d segundos",
		"message.redeem_success":           "¡Recompensa canjeada con éxito!",
		"message.review_success":           "¡Reseña enviada! Has ganado %d puntos",
		"message.referral_valid":           "Código de referido válido",
		"message.share_tracked":            "Compartición registrada",
		"message.click_tracked":            "Clic registrado",
		"message.points_adjusted":          "Puntos ajustados",
		"message.user_status_updated":      "Estado de usuario actualizado",
		"error.user_status_invalid":        "Estado de usuario no válido",
		"message.report_submitted":         "Denuncia enviada",
	},
	constants.LocaleEnUS: {
		"error.bad_request":                "Invalid request parameters",
		"error.unauthorized":               "Unauthorized",
		"error.forbidden":                  "Forbidden",
		"error.not_found":                  "Resource not found",
		"error.too_many_requests":          "Too many requests, please try again later",
		"error.internal_error":             "Internal server error",
		"error.token_invalid":              "Invalid or expired token",
		"error.login_invalid":              "Invalid username or password",
		"error.user_not_found":             "User not found",
		"error.user_disabled":              "Account is disabled",
		"error.admin_not_found":            "Admin not found",
		"error.role_not_found":             "Role not found",
		"error.role_invalid":               "Invalid role",
		"error.points_invalid":             "Invalid points amount",
		"error.insufficient_points":        "Insufficient points",
		"error.order_ref_required":         "Order reference is required",
		"error.purchase_amount_invalid":    "Invalid purchase amount",
		"error.reward_not_found":           "Reward not found",
		"error.reward_inactive":            "Reward is not active",
		"error.reward_out_of_stock":        "Reward out of stock",
		"error.reward_not_started":         "Reward is not available yet",
		"error.reward_expired":             "Reward has expired",
		"error.reward_invalid":             "Invalid reward data",
		"error.redemption_not_found":       "Redemption not found",
		"error.redemption_status_invalid":  "Redemption status change not allowed",
		"error.review_rating_invalid":      "Rating must be between 1 and 5",
		"error.review_comment_required":    "Comment is required",
		"error.review_category_invalid":    "Invalid review category",
		"error.review_not_found":           "Review not found",
		"error.review_already_reported":    "You already reported this review",
		"error.review_report_own":          "You cannot report your own review",
		"error.review_reply_required":      "Reply is required",
		"error.referral_code_required":     "Referral code is required",
		"error.referral_code_not_found":    "Referral code not found",
		"error.referral_code_exhausted":    "Could not generate a referral code, please retry",
		"error.referral_self":              "You cannot use your own referral code",
		"error.referral_already_referred":  "User was already referred",
		"error.referral_already_processed": "Referral already processed",
		"error.share_platform_invalid":     "Invalid share platform",
		"error.captcha_required":           "Verification code is required",
		"error.captcha_invalid":            "Invalid verification code",
		"error.captcha_config_invalid":     "Invalid captcha configuration",
		"error.settings_invalid":           "Invalid loyalty settings",
		"error.token_revoked":              "Session revoked, please sign in again",
		"error.rate_limited":               "Too many requests, retry in %d seconds",
		"message.redeem_success":           "Reward redeemed successfully!",
		"message.review_success":           "Review submitted! You earned %d points",
		"message.referral_valid":           "Valid referral code",
		"message.share_tracked":            "Share tracked",
		"message.click_tracked":            "Click tracked",
		"message.points_adjusted":          "Points adjusted",
		"message.user_status_updated":      "User status updated",
		"error.user_status_invalid":        "Invalid user status",
		"message.report_submitted":         "Report submitted",
	},
	constants.LocaleZhCN: {
		"error.bad_request":                "请求参数错误",
		"error.unauthorized":               "未登录或登录已过期",
		"error.forbidden":                  "无访问权限",
		"error.not_found":                  "资源不存在",
		"error.too_many_requests":          "请求过于频繁，请稍后再试",
		"error.internal_error":             "服务器内部错误",
		"error.token_invalid":              "Token 无效或已过期",
		"error.login_invalid":              "用户名或密码错误",
		"error.user_not_found":             "用户不存在",
		"error.user_disabled":              "账号已禁用",
		"error.admin_not_found":            "管理员不存在",
		"error.role_not_found":             "角色不存在",
		"error.role_invalid":               "角色无效",
		"error.points_invalid":             "积分数量无效",
		"error.insufficient_points":        "积分不足",
		"error.order_ref_required":         "订单号不能为空",
		"error.purchase_amount_invalid":    "消费金额无效",
		"error.reward_not_found":           "奖励不存在",
		"error.reward_inactive":            "奖励未启用",
		"error.reward_out_of_stock":        "奖励库存不足",
		"error.reward_not_started":         "奖励尚未开始兑换",
		"error.reward_expired":             "奖励已过期",
		"error.reward_invalid":             "奖励参数无效",
		"error.redemption_not_found":       "兑换记录不存在",
		"error.redemption_status_invalid":  "兑换状态流转不合法",
		"error.review_rating_invalid":      "评分必须在 1 到 5 之间",
		"error.review_comment_required":    "评价内容不能为空",
		"error.review_category_invalid":    "评价类别无效",
		"error.review_not_found":           "评价不存在",
		"error.review_already_reported":    "您已举报过该评价",
		"error.review_report_own":          "不能举报自己的评价",
		"error.review_reply_required":      "回复内容不能为空",
		"error.referral_code_required":     "推荐码不能为空",
		"error.referral_code_not_found":    "推荐码不存在",
		"error.referral_code_exhausted":    "推荐码生成失败，请重试",
		"error.referral_self":              "不能使用自己的推荐码",
		"error.referral_already_referred":  "该用户已被推荐",
		"error.referral_already_processed": "该推荐已处理",
		"error.share_platform_invalid":     "分享平台无效",
		"error.captcha_required":           "请输入验证码",
		"error.captcha_invalid":            "验证码错误",
		"error.captcha_config_invalid":     "验证码配置无效",
		"error.settings_invalid":           "积分设置无效",
		"error.token_revoked":              "登录状态已失效，请重新登录",
		"error.rate_limited":               "请求过于频繁，请 %d 秒后重试",
		"message.redeem_success":           "兑换成功！",
		"message.review_success":           "评价已提交！获得 %d 积分",
		"message.referral_valid":           "推荐码有效",
		"message.share_tracked":            "分享已记录",
		"message.click_tracked":            "点击已记录",
		"message.points_adjusted":          "积分已调整",
		"message.user_status_updated":      "用户状态已更新",
		"error.user_status_invalid":        "用户状态无效",
		"message.report_submitted":         "举报已提交",
	},
}
