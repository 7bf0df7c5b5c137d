// Package course содержит доменную модель курса онлайн-школы.
//
// Пакет определяет:
//
//   - Сущности: Course, Task, CourseTask, Event, CourseEvent, Person, Student
//   - Источники прогресса студента: TaskResult, TaskInterviewResult,
//     StageInterview (с отзывами), TaskSolution, TaskChecker
//   - Фильтр временного статуса задач: TaskStatusFilter
//   - Интерфейсы репозиториев, реализуемые в infrastructure/persistence
//
// # Задачи курса
//
// CourseTask - экземпляр шаблона Task внутри конкретного курса со своими
// окнами сдачи для студентов и менторов:
//
//	ct := course.CourseTask{
//	    CourseID:         course.ID,
//	    TaskID:           task.ID,
//	    Checker:          course.CheckerCrossCheck,
//	    StudentStartDate: &start,
//	    StudentEndDate:   &end,
//	}
//	copy := ct.CopyTo(otherCourse.ID, otherCourse.StartDate.Sub(course.StartDate))
//
// Отключение задачи - мягкое удаление: выставляется только флаг Disabled.
package course
